package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
)

func TestHealthStatus_Bandas(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{0, entity.HealthCritical},
		{32.9, entity.HealthCritical},
		{33, entity.HealthMedium},
		{65.9, entity.HealthMedium},
		{66, entity.HealthOptimal},
		{100, entity.HealthOptimal},
		{100.1, entity.HealthExcess},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, inventory.HealthStatus(c.ratio), "ratio %.1f", c.ratio)
	}
}

func TestEvaluateHealth_MateriaPrimaContraStockDeSeguridad(t *testing.T) {
	st := &entity.MaterialStock{
		Pool:           entity.PoolRaw,
		AvgConsumption: d(2),
		LeadTimeDays:   5,
		SafetyStock:    d(20),
		Lots:           []entity.Lot{{LotID: "L1", Quantity: d(10)}},
	}
	h := inventory.ApplyHealth(st)

	assert.True(t, st.StockAtLeast.Equal(d(30)), "2*5 + 20")
	assert.InDelta(t, 50.0, h.Ratio, 0.001)
	assert.Equal(t, entity.HealthMedium, st.Health)
}

func TestEvaluateHealth_TerminadoContraPuntoDeReorden(t *testing.T) {
	st := &entity.MaterialStock{
		Pool:           entity.PoolFinished,
		AvgConsumption: d(2),
		LeadTimeDays:   5,
		SafetyStock:    d(20),
		Lots:           []entity.Lot{{LotID: "FG-1", Quantity: d(10)}},
	}
	h := inventory.EvaluateHealth(st)
	assert.InDelta(t, 33.333, h.Ratio, 0.01)
	assert.Equal(t, entity.HealthMedium, h.Status)
}

func TestEvaluateHealth_BaseCeroUsaUno(t *testing.T) {
	st := &entity.MaterialStock{Pool: entity.PoolRaw, Lots: []entity.Lot{{LotID: "L", Quantity: d(3)}}}
	h := inventory.EvaluateHealth(st)
	assert.InDelta(t, 300.0, h.Ratio, 0.001)
	assert.Equal(t, entity.HealthExcess, h.Status)
}

func TestReceiptCost_PromedioPonderado(t *testing.T) {
	st := &entity.MaterialStock{
		CostPerUnit: d(1000),
		Lots:        []entity.Lot{{LotID: "L1", Quantity: d(10)}},
	}
	inventory.ReceiptCost(st, d(10), d(2000))
	assert.True(t, st.CostPerUnit.Equal(d(1500)), "got %s", st.CostPerUnit)

	assert.True(t, inventory.CostCalculator(decimal.Zero, decimal.Zero, decimal.Zero, d(5)).IsZero())
}
