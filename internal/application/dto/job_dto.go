package dto

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IssueKittingRequest body para POST /api/jobs/:id/kitting. PreferredLots material -> lote.
type IssueKittingRequest struct {
	PreferredLots map[string]string `json:"preferred_lots,omitempty"`
}

// AdvanceStageRequest body para POST /api/jobs/:id/advance.
type AdvanceStageRequest struct {
	Stage string `json:"stage"`
}

// VendorReceiptRequest body para POST /api/jobs/:id/vendor-receipt.
type VendorReceiptRequest struct {
	ActualQty  decimal.Decimal `json:"actual_qty"`
	WastageQty decimal.Decimal `json:"wastage_qty"`
}

// RaisePORequest body para POST /api/jobs/:id/purchase-order.
type RaisePORequest struct {
	VendorID string          `json:"vendor_id"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ReceiveGoodsRequest body para POST /api/jobs/:id/goods-receipt.
type ReceiveGoodsRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// RaisePurchaseRequest body para POST /api/procurement/purchases.
type RaisePurchaseRequest struct {
	MaterialID string          `json:"material_id"`
	VendorID   string          `json:"vendor_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// ReceivePurchaseRequest body para POST /api/procurement/purchases/:number/receipts.
// mode "qc" evalúa la muestra; vacío o "direct" acredita todo lo recibido.
type ReceivePurchaseRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	LotID       string          `json:"lot_id"`
	Mode        string          `json:"mode"`
	SampleSize  decimal.Decimal `json:"sample_size"`
	RejectedQty decimal.Decimal `json:"rejected_qty"`
	Notes       string          `json:"notes"`
}

// JobResponse orden de trabajo completa (picking, QC y timeline incluidos).
type JobResponse struct {
	JobID           string                  `json:"job_id"`
	PlanID          string                  `json:"plan_id"`
	OrderID         string                  `json:"order_id"`
	ProductID       string                  `json:"product_id"`
	Type            string                  `json:"type"`
	TotalQty        decimal.Decimal         `json:"total_qty"`
	CurrentStep     string                  `json:"current_step"`
	Status          string                  `json:"status"`
	TwoStageQC      bool                    `json:"two_stage_qc"`
	Routing         RoutingDTO              `json:"routing"`
	VendorID        string                  `json:"vendor_id,omitempty"`
	IssuedMaterials []entity.IssuedMaterial `json:"issued_materials"`
	VendorReport    *entity.VendorReport    `json:"vendor_report,omitempty"`
	QCResult        *entity.QCResult        `json:"qc_result,omitempty"`
	Timeline        []entity.TimelineEntry  `json:"timeline"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FromJob mapea una orden de trabajo.
func FromJob(j *entity.JobCard) JobResponse {
	issued := j.IssuedMaterials
	if issued == nil {
		issued = []entity.IssuedMaterial{}
	}
	timeline := j.Timeline
	if timeline == nil {
		timeline = []entity.TimelineEntry{}
	}
	return JobResponse{
		JobID:           j.JobID,
		PlanID:          j.PlanID,
		OrderID:         j.OrderID,
		ProductID:       j.ProductID,
		Type:            string(j.Type),
		TotalQty:        j.TotalQty,
		CurrentStep:     string(j.CurrentStep),
		Status:          string(j.Status),
		TwoStageQC:      j.TwoStageQC,
		Routing:         fromRouting(j.Routing),
		VendorID:        j.VendorID,
		IssuedMaterials: issued,
		VendorReport:    j.VendorReport,
		QCResult:        j.QCResult,
		Timeline:        timeline,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// FromJobs mapea una lista.
func FromJobs(list []*entity.JobCard) []JobResponse {
	out := make([]JobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, FromJob(j))
	}
	return out
}

// PurchaseOrderResponse OC de materia prima o de trading.
type PurchaseOrderResponse struct {
	ID          string             `json:"id"`
	PONumber    string             `json:"po_number"`
	JobID       string             `json:"job_id,omitempty"`
	VendorID    string             `json:"vendor_id"`
	ItemType    string             `json:"item_type"`
	ItemID      string             `json:"item_id"`
	Quantity    decimal.Decimal    `json:"quantity"`
	UnitCost    decimal.Decimal    `json:"unit_cost"`
	Total       decimal.Decimal    `json:"total"`
	Status      string             `json:"status"`
	ExpectedAt  time.Time          `json:"expected_at"`
	ReceivedQty decimal.Decimal    `json:"received_qty"`
	Pending     decimal.Decimal    `json:"pending_qty"`
	ReceivedAt  *time.Time         `json:"received_at,omitempty"`
	Receipts    []entity.POReceipt `json:"receipts"`
}

// FromPurchaseOrder mapea la OC.
func FromPurchaseOrder(po *entity.PurchaseOrder) PurchaseOrderResponse {
	receipts := po.Receipts
	if receipts == nil {
		receipts = []entity.POReceipt{}
	}
	return PurchaseOrderResponse{
		ID:          po.ID,
		PONumber:    po.PONumber,
		JobID:       po.JobID,
		VendorID:    po.VendorID,
		ItemType:    po.ItemType,
		ItemID:      po.ItemID,
		Quantity:    po.Quantity,
		UnitCost:    po.UnitCost,
		Total:       po.Total(),
		Status:      po.Status,
		ExpectedAt:  po.ExpectedAt,
		ReceivedQty: po.ReceivedQty,
		Pending:     po.Pending(),
		ReceivedAt:  po.ReceivedAt,
		Receipts:    receipts,
	}
}

// FromPurchaseOrders mapea un listado.
func FromPurchaseOrders(pos []*entity.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, 0, len(pos))
	for _, po := range pos {
		out = append(out, FromPurchaseOrder(po))
	}
	return out
}
