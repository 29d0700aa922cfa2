package dto

import "github.com/shopspring/decimal"

// SubmitQCRequest body para POST /api/qc/:id/inspection.
type SubmitQCRequest struct {
	SampleSize  decimal.Decimal `json:"sample_size"`
	RejectedQty decimal.Decimal `json:"rejected_qty"`
	Notes       string          `json:"notes,omitempty"`
}

// ReviewQCRequest body para POST /api/qc/:id/review (solo admin).
type ReviewQCRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}

// QCDecisionResponse resultado de la inspección.
type QCDecisionResponse struct {
	Decision string      `json:"decision"`
	Job      JobResponse `json:"job"`
}
