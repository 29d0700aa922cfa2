// Package quality evalúa muestras de inspección contra el umbral de retención.
package quality

import (
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// HoldThreshold porcentaje de defectos a partir del cual (inclusive) el lote queda retenido.
const HoldThreshold = 20.0

// Evaluation resultado de una inspección.
type Evaluation struct {
	DefectRate float64
	PassedQty  decimal.Decimal
	Hold       bool
}

// DefectRate rechazados / max(muestra, 1) * 100.
func DefectRate(sample, rejected decimal.Decimal) float64 {
	base := sample
	if base.LessThan(decimal.NewFromInt(1)) {
		base = decimal.NewFromInt(1)
	}
	rate, _ := rejected.Div(base).Mul(decimal.NewFromInt(100)).Float64()
	return rate
}

// Validate rangos de la muestra frente al lote.
func Validate(totalQty, sample, rejected decimal.Decimal) error {
	switch {
	case sample.IsNegative():
		return domain.Invalid("sample_size", "no puede ser negativo")
	case rejected.IsNegative():
		return domain.Invalid("rejected_qty", "no puede ser negativo")
	case sample.GreaterThan(totalQty):
		return domain.Invalid("sample_size", "no puede superar el lote")
	case rejected.GreaterThan(sample):
		return domain.Invalid("rejected_qty", "no puede superar la muestra")
	case rejected.GreaterThan(totalQty):
		return domain.Invalid("rejected_qty", "no puede superar el lote")
	}
	return nil
}

// Evaluate aplica el umbral. Los rechazados se descuentan del lote completo:
// passedQty = totalQty - rejected.
func Evaluate(totalQty, sample, rejected decimal.Decimal) (Evaluation, error) {
	if err := Validate(totalQty, sample, rejected); err != nil {
		return Evaluation{}, err
	}
	rate := DefectRate(sample, rejected)
	return Evaluation{
		DefectRate: rate,
		PassedQty:  totalQty.Sub(rejected),
		Hold:       rate >= HoldThreshold,
	}, nil
}

// AssemblyPassed indica si la orden ya cruzó la compuerta de ensamble: por la línea de
// tiempo o por la existencia del lote semiterminado SFG-<jobID> en el pool del producto.
func AssemblyPassed(job *entity.JobCard, semiFinished *entity.MaterialStock) bool {
	if job.AssemblyGatePassed() {
		return true
	}
	return semiFinished != nil && semiFinished.Lot(entity.SemiFinishedLotID(job.JobID)) >= 0
}

// NextGate compuerta que corresponde a la próxima inspección.
func NextGate(job *entity.JobCard, semiFinished *entity.MaterialStock) int {
	if job.TwoStageQC && !AssemblyPassed(job, semiFinished) {
		return entity.GateAssembly
	}
	return entity.GateFinal
}

// InspectedQty cantidad de la que se descuentan los rechazados. En la compuerta final de una
// orden de dos etapas es el lote SFG-<jobID> vigente, acotado a totalQty.
func InspectedQty(job *entity.JobCard, semiFinished *entity.MaterialStock, gate int) decimal.Decimal {
	if gate == entity.GateFinal && semiFinished != nil {
		if i := semiFinished.Lot(entity.SemiFinishedLotID(job.JobID)); i >= 0 {
			return decimal.Min(semiFinished.Lots[i].Quantity, job.TotalQty)
		}
	}
	return job.TotalQty
}

// PassedQty inspeccionadas menos rechazadas, nunca negativa.
func PassedQty(inspected, rejected decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, inspected.Sub(rejected))
}
