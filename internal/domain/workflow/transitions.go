package workflow

import "strings"

// Trigger origen de una transición de etapa.
type Trigger string

const (
	TriggerKitting               Trigger = "KITTING"
	TriggerStageReport           Trigger = "STAGE_REPORT"
	TriggerHandover              Trigger = "HANDOVER"
	TriggerVendorDispatch        Trigger = "VENDOR_DISPATCH"
	TriggerRaisePO               Trigger = "RAISE_PO"
	TriggerGoodsReceipt          Trigger = "GOODS_RECEIPT"
	TriggerQCAssemblyPass        Trigger = "QC_ASSEMBLY_PASS"
	TriggerQCFinalPass           Trigger = "QC_FINAL_PASS"
	TriggerQCHold                Trigger = "QC_HOLD"
	TriggerReviewApproveAssembly Trigger = "REVIEW_APPROVE_ASSEMBLY"
	TriggerReviewApproveFinal    Trigger = "REVIEW_APPROVE_FINAL"
	TriggerReviewReject          Trigger = "REVIEW_REJECT"
)

// Transition arista legal del grafo de etapas.
type Transition struct {
	From    Stage
	To      Stage
	Trigger Trigger
}

// transitions es el grafo completo. Cualquier movimiento fuera de esta tabla se rechaza.
var transitions = []Transition{
	// Kitting: entrega de materia prima al taller.
	{StageMaterialPending, StageCuttingPending, TriggerKitting},

	// Reportes de taller.
	{StageCuttingPending, StageCuttingStarted, TriggerStageReport},
	{StageCuttingStarted, StageCuttingCompleted, TriggerStageReport},
	{StageStitchingPending, StageStitchingStarted, TriggerStageReport},
	{StageStitchingStarted, StageStitchingCompleted, TriggerStageReport},
	{StagePackagingPending, StagePackagingStarted, TriggerStageReport},
	{StagePackagingStarted, StageQCPending, TriggerStageReport},

	// Entregas automáticas al siguiente proceso.
	{StageCuttingCompleted, StageStitchingPending, TriggerHandover},
	{StageStitchingCompleted, StagePackagingPending, TriggerHandover},
	{StageStitchingCompleted, StageQCPending, TriggerHandover}, // producto con QC de ensamble

	// Maquila: el proveedor reporta producción desde cualquier etapa de taller.
	{StageCuttingPending, StageQCPending, TriggerVendorDispatch},
	{StageCuttingStarted, StageQCPending, TriggerVendorDispatch},
	{StageCuttingCompleted, StageQCPending, TriggerVendorDispatch},
	{StageStitchingPending, StageQCPending, TriggerVendorDispatch},
	{StageStitchingStarted, StageQCPending, TriggerVendorDispatch},
	{StageStitchingCompleted, StageQCPending, TriggerVendorDispatch},
	{StagePackagingPending, StageQCPending, TriggerVendorDispatch},
	{StagePackagingStarted, StageQCPending, TriggerVendorDispatch},

	// Compra total (trading).
	{StageProcurementPending, StagePORaised, TriggerRaisePO},
	{StagePORaised, StageQCPending, TriggerGoodsReceipt},

	// Compuertas de calidad.
	{StageQCPending, StagePackagingPending, TriggerQCAssemblyPass},
	{StageQCPending, StageQCCompleted, TriggerQCFinalPass},
	{StageQCPending, StageQCReviewNeeded, TriggerQCHold},
	{StageQCReviewNeeded, StagePackagingPending, TriggerReviewApproveAssembly},
	{StageQCReviewNeeded, StageQCCompleted, TriggerReviewApproveFinal},
	{StageQCReviewNeeded, StageScrapped, TriggerReviewReject},
}

// Allowed indica si existe la arista from→to para el trigger dado.
func Allowed(from, to Stage, trigger Trigger) bool {
	for _, t := range transitions {
		if t.From == from && t.To == to && t.Trigger == trigger {
			return true
		}
	}
	return false
}

// Targets etapas alcanzables desde from con el trigger dado.
func Targets(from Stage, trigger Trigger) []Stage {
	var out []Stage
	for _, t := range transitions {
		if t.From == from && t.Trigger == trigger {
			out = append(out, t.To)
		}
	}
	return out
}

// Sources etapas desde las que se puede llegar a "to" con el trigger dado.
func Sources(to Stage, trigger Trigger) []Stage {
	var out []Stage
	for _, t := range transitions {
		if t.To == to && t.Trigger == trigger {
			out = append(out, t.From)
		}
	}
	return out
}

// Accepts indica si alguna arista del trigger sale de la etapa.
func Accepts(from Stage, trigger Trigger) bool {
	return len(Targets(from, trigger)) > 0
}

// Expected describe las etapas de origen válidas, para mensajes de error.
func Expected(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = string(s)
	}
	return strings.Join(parts, "|")
}

// HandoverTarget destino de la entrega automática tras un *_COMPLETED.
// awaitingAssemblyQC aplica a productos con doble compuerta que aún no pasaron la de ensamble.
func HandoverTarget(completed Stage, awaitingAssemblyQC bool) (Stage, bool) {
	switch completed {
	case StageCuttingCompleted:
		return StageStitchingPending, true
	case StageStitchingCompleted:
		if awaitingAssemblyQC {
			return StageQCPending, true
		}
		return StagePackagingPending, true
	}
	return "", false
}

// StatusFor estado agregado que corresponde a una etapa.
func StatusFor(stage Stage) Status {
	switch stage {
	case StageMaterialPending, StageProcurementPending:
		return StatusPending
	case StageQCPending:
		return StatusQCPending
	case StageQCReviewNeeded:
		return StatusQCHold
	case StageQCCompleted:
		return StatusCompleted
	case StageScrapped:
		return StatusRejected
	}
	return StatusInProgress
}
