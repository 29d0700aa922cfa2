// Package workflow define el vocabulario cerrado de etapas y estados de una
// orden de trabajo (job card) y la tabla de transiciones legales entre etapas.
package workflow

import "fmt"

// Stage etapa actual (currentStep) de una orden de trabajo.
type Stage string

const (
	StageMaterialPending    Stage = "MATERIAL_PENDING"
	StageCuttingPending     Stage = "CUTTING_PENDING"
	StageCuttingStarted     Stage = "CUTTING_STARTED"
	StageCuttingCompleted   Stage = "CUTTING_COMPLETED"
	StageStitchingPending   Stage = "STITCHING_PENDING"
	StageStitchingStarted   Stage = "STITCHING_STARTED"
	StageStitchingCompleted Stage = "STITCHING_COMPLETED"
	StagePackagingPending   Stage = "PACKAGING_PENDING"
	StagePackagingStarted   Stage = "PACKAGING_STARTED"
	StageQCPending          Stage = "QC_PENDING"
	StageQCReviewNeeded     Stage = "QC_REVIEW_NEEDED"
	StageQCCompleted        Stage = "QC_COMPLETED"
	StageScrapped           Stage = "SCRAPPED"
	StageProcurementPending Stage = "PROCUREMENT_PENDING"
	StagePORaised           Stage = "PO_RAISED"
)

var allStages = []Stage{
	StageMaterialPending, StageCuttingPending, StageCuttingStarted, StageCuttingCompleted,
	StageStitchingPending, StageStitchingStarted, StageStitchingCompleted,
	StagePackagingPending, StagePackagingStarted, StageQCPending, StageQCReviewNeeded,
	StageQCCompleted, StageScrapped, StageProcurementPending, StagePORaised,
}

// ParseStage valida un string contra el vocabulario de etapas.
func ParseStage(s string) (Stage, error) {
	for _, st := range allStages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("etapa desconocida %q", s)
}

// Terminal indica si la etapa cierra la orden de trabajo.
func (s Stage) Terminal() bool {
	return s == StageQCCompleted || s == StageScrapped
}

// Process nombre del proceso productivo al que pertenece la etapa
// ("Cutting", "Stitching", "Packaging"); vacío si no es una etapa de taller.
func (s Stage) Process() string {
	switch s {
	case StageCuttingPending, StageCuttingStarted, StageCuttingCompleted:
		return ProcessCutting
	case StageStitchingPending, StageStitchingStarted, StageStitchingCompleted:
		return ProcessStitching
	case StagePackagingPending, StagePackagingStarted:
		return ProcessPackaging
	}
	return ""
}

// Procesos de taller (también se usan como etiqueta de la línea de tiempo).
const (
	ProcessCutting   = "Cutting"
	ProcessStitching = "Stitching"
	ProcessPackaging = "Packaging"
)

// Status estado agregado de la orden de trabajo.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusQCPending  Status = "QC_PENDING"
	StatusQCHold     Status = "QC_HOLD"
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED"
)

// Closed indica si el estado ya no admite operaciones.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusRejected
}
