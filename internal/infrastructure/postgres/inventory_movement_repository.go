package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, transaction_id, item_id, pool, lot_id, type, quantity, unit_cost, total_cost, reason, date, created_by`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste las líneas del diario (una por lote afectado).
func (r *InventoryMovementRepo) Create(ctx context.Context, movements ...*entity.InventoryMovement) error {
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, m := range movements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query,
			m.ID, m.TransactionID, m.ItemID, m.Pool, m.LotID, m.Type,
			m.Quantity, m.UnitCost, m.TotalCost, m.Reason, m.Date, nullString(m.CreatedBy),
		)
		if err != nil {
			return mapError("create inventory movement", err)
		}
	}
	return nil
}

// ListByItem movimientos de un item, más recientes primero.
func (r *InventoryMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE item_id = $1 ORDER BY date DESC, id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, itemID, limit, offset)
}

// ListByTransaction movimientos originados por una misma operación (jobID, orden, OC).
func (r *InventoryMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE transaction_id = $1 ORDER BY date, id`
	return r.list(ctx, query, transactionID)
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var createdBy *string
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.ItemID, &m.Pool, &m.LotID, &m.Type,
			&m.Quantity, &m.UnitCost, &m.TotalCost, &m.Reason, &m.Date, &createdBy,
		); err != nil {
			return nil, mapError("scan movement", err)
		}
		m.CreatedBy = deref(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
