package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/quality"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// defaultLeadTime entrega esperada cuando el material no tiene lead time configurado.
const defaultLeadTime = 7 * 24 * time.Hour

// ProcurementUseCase compras de materia prima: OC, recepciones parciales con QC de entrada
// y revisión administrativa de las recepciones retenidas.
type ProcurementUseCase struct {
	txRunner ports.TxRunner
	repos    repository.TxRepos
	log      zerolog.Logger
}

// NewProcurementUseCase construye el caso de uso.
func NewProcurementUseCase(txRunner ports.TxRunner, repos repository.TxRepos, log zerolog.Logger) *ProcurementUseCase {
	return &ProcurementUseCase{txRunner: txRunner, repos: repos, log: log}
}

// PurchaseInput OC de una materia prima.
type PurchaseInput struct {
	MaterialID string
	VendorID   string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
}

// RaisePurchase emite la OC. No toca stock.
func (uc *ProcurementUseCase) RaisePurchase(ctx context.Context, in PurchaseInput, actor entity.Actor) (*entity.PurchaseOrder, error) {
	if in.VendorID == "" {
		return nil, domain.Invalid("vendor_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	var po *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		stock, err := r.Stocks.Get(ctx, in.MaterialID, entity.PoolRaw)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.NotFound("material", in.MaterialID)
		}
		n, err := r.Sequences.Next(ctx, "PO-RM")
		if err != nil {
			return err
		}
		now := time.Now()
		lead := defaultLeadTime
		if stock.LeadTimeDays > 0 {
			lead = time.Duration(stock.LeadTimeDays) * 24 * time.Hour
		}
		po = &entity.PurchaseOrder{
			ID:          uuid.New().String(),
			PONumber:    fmt.Sprintf("PO-RM-%06d", n),
			VendorID:    in.VendorID,
			ItemType:    entity.POItemMaterial,
			ItemID:      in.MaterialID,
			Quantity:    in.Quantity,
			UnitCost:    in.UnitCost,
			Status:      entity.POStatusIssued,
			ExpectedAt:  now.Add(lead),
			ReceivedQty: decimal.Zero,
			CreatedBy:   actor.Label(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return r.PurchaseOrders.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("po_number", po.PONumber).
		Str("material_id", po.ItemID).
		Str("qty", po.Quantity.String()).
		Msg("orden de compra emitida")
	return po, nil
}

// PurchaseReceipt llegada de mercancía. Con Inspect se evalúa la muestra; sin él es recepción directa.
type PurchaseReceipt struct {
	Quantity    decimal.Decimal
	LotID       string
	Inspect     bool
	SampleSize  decimal.Decimal
	RejectedQty decimal.Decimal
	Notes       string
}

// ReceivePurchase registra una recepción parcial o total. Con tasa de defectos >= 20% la OC
// queda en QC_REVIEW sin acreditar nada; si no, se acredita solo lo bueno (recibido menos
// rechazado) como un lote nuevo al costo de la OC.
func (uc *ProcurementUseCase) ReceivePurchase(ctx context.Context, poNumber string, in PurchaseReceipt, actor entity.Actor) (*entity.PurchaseOrder, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if !in.Inspect && (!in.SampleSize.IsZero() || !in.RejectedQty.IsZero()) {
		return nil, domain.Invalid("mode", "muestra y rechazos requieren inspección")
	}
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		po, err := lockPurchase(ctx, r, poNumber)
		if err != nil {
			return err
		}
		if po.ItemType != entity.POItemMaterial {
			return domain.Invalid("po_number", "la OC de trading se recibe sobre su orden de trabajo")
		}
		if !po.Open() {
			return stalePurchase(po, entity.POStatusIssued, entity.POStatusPartial)
		}
		if in.Quantity.GreaterThan(po.Pending()) {
			return domain.Invalid("quantity", fmt.Sprintf("supera lo pendiente (%s)", po.Pending()))
		}
		now := time.Now()
		receipt := entity.POReceipt{
			Quantity: in.Quantity,
			LotID:    in.LotID,
			Result:   entity.ReceiptDirect,
			Notes:    in.Notes,
			Actor:    actor.Label(),
			At:       now,
		}
		if in.Inspect {
			eval, err := quality.Evaluate(in.Quantity, in.SampleSize, in.RejectedQty)
			if err != nil {
				return err
			}
			receipt.SampleSize = in.SampleSize
			receipt.RejectedQty = in.RejectedQty
			receipt.DefectRate = eval.DefectRate
			receipt.Result = entity.ReceiptPassed
			if eval.Hold {
				receipt.Result = entity.ReceiptHeld
				po.Receipts = append(po.Receipts, receipt)
				po.Status = entity.POStatusQCReview
				po.UpdatedAt = now
				out = po
				return r.PurchaseOrders.Update(ctx, po)
			}
		}
		if err := acceptReceipt(ctx, r, po, &receipt, "recepción OC"); err != nil {
			return err
		}
		po.Receipts = append(po.Receipts, receipt)
		out = po
		return r.PurchaseOrders.Update(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	last := out.LastReceipt()
	ev := uc.log.Info()
	if last.Result == entity.ReceiptHeld {
		ev = uc.log.Warn()
	}
	ev.Str("po_number", out.PONumber).
		Str("qty", last.Quantity.String()).
		Float64("defect_rate", last.DefectRate).
		Str("result", last.Result).
		Str("status", out.Status).
		Msg("recepción de orden de compra")
	return out, nil
}

// ReviewPurchaseQC decisión del administrador sobre la última recepción retenida. approve
// acredita lo bueno y reabre o cierra la OC según lo pendiente; reject desecha la recepción
// y cierra la OC sin acreditar nada.
func (uc *ProcurementUseCase) ReviewPurchaseQC(ctx context.Context, poNumber string, approve bool, notes string, admin entity.Actor) (*entity.PurchaseOrder, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	var out *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		po, err := lockPurchase(ctx, r, poNumber)
		if err != nil {
			return err
		}
		last := po.LastReceipt()
		if po.Status != entity.POStatusQCReview || last == nil || last.Result != entity.ReceiptHeld {
			return stalePurchase(po, entity.POStatusQCReview)
		}
		now := time.Now()
		last.Actor = admin.Label()
		last.At = now
		if notes != "" {
			last.Notes = notes
		}
		if !approve {
			last.Result = entity.ReceiptRejected
			po.Status = entity.POStatusRejected
			po.UpdatedAt = now
			out = po
			return r.PurchaseOrders.Update(ctx, po)
		}
		last.Result = entity.ReceiptApproved
		if err := acceptReceipt(ctx, r, po, last, "aprobación QC de OC"); err != nil {
			return err
		}
		out = po
		return r.PurchaseOrders.Update(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().
		Str("po_number", poNumber).
		Str("admin", admin.Label()).
		Bool("approve", approve).
		Str("status", out.Status).
		Msg("revisión administrativa de recepción")
	return out, nil
}

// GetPurchase lectura puntual.
func (uc *ProcurementUseCase) GetPurchase(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error) {
	po, err := uc.repos.PurchaseOrders.GetByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NotFound("orden de compra", poNumber)
	}
	return po, nil
}

// ListPurchases OC por estado (vacío = todas).
func (uc *ProcurementUseCase) ListPurchases(ctx context.Context, status string) ([]*entity.PurchaseOrder, error) {
	switch status {
	case "", entity.POStatusIssued, entity.POStatusPartial, entity.POStatusReceived, entity.POStatusQCReview, entity.POStatusRejected:
	default:
		return nil, domain.Invalid("status", "desconocido")
	}
	return uc.repos.PurchaseOrders.List(ctx, status)
}

// acceptReceipt acredita lo bueno de una recepción en el stock RAW y suma lo recibido a la OC.
func acceptReceipt(ctx context.Context, r repository.TxRepos, po *entity.PurchaseOrder, receipt *entity.POReceipt, reason string) error {
	good := quality.PassedQty(receipt.Quantity, receipt.RejectedQty)
	if good.IsPositive() {
		if receipt.LotID == "" {
			lotID, err := nextLotID(ctx, r)
			if err != nil {
				return err
			}
			receipt.LotID = lotID
		}
		cost := po.UnitCost
		if err := CreditInTx(ctx, r, po.ItemID, entity.PoolRaw, good, receipt.LotID, &cost, Entry{
			Reference: po.PONumber, Reason: reason, Actor: receipt.Actor, At: receipt.At,
		}); err != nil {
			return err
		}
	}
	po.ReceivedQty = po.ReceivedQty.Add(receipt.Quantity)
	at := receipt.At
	po.ReceivedAt = &at
	po.UpdatedAt = at
	po.Status = entity.POStatusPartial
	if !po.Pending().IsPositive() {
		po.Status = entity.POStatusReceived
	}
	return nil
}

func lockPurchase(ctx context.Context, r repository.TxRepos, poNumber string) (*entity.PurchaseOrder, error) {
	po, err := r.PurchaseOrders.GetForUpdate(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NotFound("orden de compra", poNumber)
	}
	return po, nil
}

func stalePurchase(po *entity.PurchaseOrder, expected ...string) error {
	return &domain.StaleStateError{
		Entity:   "orden de compra",
		ID:       po.PONumber,
		Current:  po.Status,
		Expected: strings.Join(expected, "|"),
	}
}
