package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	POStatusIssued   = "ISSUED"
	POStatusPartial  = "PARTIAL"
	POStatusReceived = "RECEIVED"
	POStatusQCReview = "QC_REVIEW"
	POStatusRejected = "REJECTED"
)

// Tipo de ítem comprado.
const (
	POItemMaterial = "RAW_MATERIAL"
	POItemProduct  = "FINISHED_GOOD"
)

// Resultado de cada recepción registrada en la OC.
const (
	ReceiptDirect   = "DIRECT"
	ReceiptPassed   = "QC_PASSED"
	ReceiptHeld     = "QC_HELD"
	ReceiptApproved = "FORCE_APPROVED"
	ReceiptRejected = "REJECTED"
)

// PurchaseOrder compra a un proveedor. Materia prima (se recibe por partes con QC de
// entrada) o producto terminado de un split FULL_BUY (JobID informado).
type PurchaseOrder struct {
	ID          string
	PONumber    string
	JobID       string
	VendorID    string
	ItemType    string
	ItemID      string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Status      string
	ExpectedAt  time.Time
	ReceivedQty decimal.Decimal
	ReceivedAt  *time.Time
	Receipts    []POReceipt
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// POReceipt una llegada de mercancía contra la OC.
type POReceipt struct {
	Quantity    decimal.Decimal `json:"quantity"`
	SampleSize  decimal.Decimal `json:"sample_size"`
	RejectedQty decimal.Decimal `json:"rejected_qty"`
	DefectRate  float64         `json:"defect_rate"`
	LotID       string          `json:"lot_id"`
	Result      string          `json:"result"`
	Notes       string          `json:"notes,omitempty"`
	Actor       string          `json:"actor"`
	At          time.Time       `json:"at"`
}

// Total valor de la orden.
func (p *PurchaseOrder) Total() decimal.Decimal {
	return p.Quantity.Mul(p.UnitCost)
}

// Pending cantidad que falta por recibir.
func (p *PurchaseOrder) Pending() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Quantity.Sub(p.ReceivedQty))
}

// Open admite nuevas recepciones.
func (p *PurchaseOrder) Open() bool {
	return p.Status == POStatusIssued || p.Status == POStatusPartial
}

// LastReceipt última recepción; nil si no hay.
func (p *PurchaseOrder) LastReceipt() *POReceipt {
	if len(p.Receipts) == 0 {
		return nil
	}
	return &p.Receipts[len(p.Receipts)-1]
}

// Clone copia profunda.
func (p *PurchaseOrder) Clone() *PurchaseOrder {
	c := *p
	if p.ReceivedAt != nil {
		t := *p.ReceivedAt
		c.ReceivedAt = &t
	}
	c.Receipts = append([]POReceipt(nil), p.Receipts...)
	return &c
}
