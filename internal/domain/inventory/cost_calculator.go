package inventory

import (
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostCalculator costo promedio ponderado tras una recepción.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// ReceiptCost actualiza CostPerUnit del stock antes de acreditar qty a unitCost.
// Debe llamarse antes de Credit: usa la existencia previa a la entrada.
func ReceiptCost(stock *entity.MaterialStock, qty, unitCost decimal.Decimal) {
	stock.CostPerUnit = CostCalculator(stock.OnHand(), stock.CostPerUnit, qty, unitCost).Round(4)
}
