package inventory

import (
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Umbrales de salud en porcentaje.
const (
	healthCriticalBelow = 33
	healthMediumBelow   = 66
	healthOptimalUpTo   = 100
)

// Health resultado presentacional; nunca se usa para decidir aritmética de stock.
type Health struct {
	StockAtLeast decimal.Decimal
	Ratio        float64
	Status       string
}

// EvaluateHealth calcula punto de reorden y estado de salud.
// Materia prima se compara contra el stock de seguridad; producto contra el punto de reorden.
func EvaluateHealth(stock *entity.MaterialStock) Health {
	atLeast := stock.AvgConsumption.Mul(decimal.NewFromInt(int64(stock.LeadTimeDays))).Add(stock.SafetyStock)

	base := stock.SafetyStock
	if stock.Pool != entity.PoolRaw {
		base = atLeast
	}
	if !base.IsPositive() {
		base = decimal.NewFromInt(1)
	}
	ratio, _ := stock.OnHand().Div(base).Mul(decimal.NewFromInt(100)).Float64()

	return Health{StockAtLeast: atLeast, Ratio: ratio, Status: HealthStatus(ratio)}
}

// HealthStatus banda de salud para un porcentaje.
func HealthStatus(ratio float64) string {
	switch {
	case ratio < healthCriticalBelow:
		return entity.HealthCritical
	case ratio < healthMediumBelow:
		return entity.HealthMedium
	case ratio <= healthOptimalUpTo:
		return entity.HealthOptimal
	default:
		return entity.HealthExcess
	}
}

// ApplyHealth estampa StockAtLeast y Health en el registro.
func ApplyHealth(stock *entity.MaterialStock) Health {
	h := EvaluateHealth(stock)
	stock.StockAtLeast = h.StockAtLeast
	stock.Health = h.Status
	return h
}
