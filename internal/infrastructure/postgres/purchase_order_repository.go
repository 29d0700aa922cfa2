package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const poColumns = `id, po_number, job_id, vendor_id, item_type, item_id, quantity, unit_cost, status,
	expected_at, received_qty, received_at, receipts, created_by, created_at, updated_at`

// PurchaseOrderRepo órdenes de compra; el historial de recepciones vive en JSONB.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta la OC. Una segunda OC para la misma orden de trabajo devuelve domain.ErrDuplicate.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `INSERT INTO purchase_orders (` + poColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		po.ID, po.PONumber, nullString(po.JobID), po.VendorID, po.ItemType, po.ItemID, po.Quantity, po.UnitCost, po.Status,
		po.ExpectedAt, po.ReceivedQty, po.ReceivedAt, receiptsOrEmpty(po.Receipts), nullString(po.CreatedBy), po.CreatedAt, po.UpdatedAt,
	)
	return mapError("insert purchase order", err)
}

// GetByJobID obtiene la OC de trading de una orden de trabajo; nil si no existe.
func (r *PurchaseOrderRepo) GetByJobID(ctx context.Context, jobID string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE job_id = $1`, jobID)
}

// GetByNumber obtiene una OC por número (PO-RM-000001).
func (r *PurchaseOrderRepo) GetByNumber(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE po_number = $1`, poNumber)
}

// GetForUpdate obtiene la OC con bloqueo de fila.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE po_number = $1 FOR UPDATE`, poNumber)
}

// List OC por estado, más recientes primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, status string) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, po_number DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list purchase orders", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, mapError("scan purchase order", err)
		}
		list = append(list, po)
	}
	return list, rows.Err()
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, query, arg string) (*entity.PurchaseOrder, error) {
	po, err := scanPO(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get purchase order", err)
	}
	return po, nil
}

func scanPO(row scanner) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var jobID, createdBy *string
	err := row.Scan(
		&po.ID, &po.PONumber, &jobID, &po.VendorID, &po.ItemType, &po.ItemID, &po.Quantity, &po.UnitCost, &po.Status,
		&po.ExpectedAt, &po.ReceivedQty, &po.ReceivedAt, &po.Receipts, &createdBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	po.JobID = deref(jobID)
	po.CreatedBy = deref(createdBy)
	return &po, nil
}

// Update registra recepciones y cambios de estado.
func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders SET status = $2, received_qty = $3, received_at = $4, receipts = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, po.ID, po.Status, po.ReceivedQty, po.ReceivedAt, receiptsOrEmpty(po.Receipts), po.UpdatedAt)
	return mapError("update purchase order", err)
}

func receiptsOrEmpty(r []entity.POReceipt) []entity.POReceipt {
	if r == nil {
		return []entity.POReceipt{}
	}
	return r
}
