package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.ProductionPlanRepository = (*ProductionPlanRepo)(nil)

const planColumns = `id, plan_number, order_id, product_id, total_qty_to_make, planned_qty, dispatched_qty,
	splits, fulfilled_at, created_at, updated_at`

// ProductionPlanRepo planes de producción; los splits confirmados viven en JSONB.
type ProductionPlanRepo struct {
	q Querier
}

// NewProductionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionPlanRepository(q Querier) *ProductionPlanRepo {
	return &ProductionPlanRepo{q: q}
}

// Create inserta el plan.
func (r *ProductionPlanRepo) Create(ctx context.Context, p *entity.ProductionPlan) error {
	query := `INSERT INTO production_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.PlanNumber, p.OrderID, p.ProductID, p.TotalQtyToMake, p.PlannedQty, p.DispatchedQty,
		p.Splits, p.FulfilledAt, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("insert plan", err)
}

// GetByID obtiene un plan; nil si no existe.
func (r *ProductionPlanRepo) GetByID(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.getOne(ctx, `SELECT `+planColumns+` FROM production_plans WHERE id = $1`, id)
}

// GetForUpdate obtiene el plan con bloqueo de fila.
func (r *ProductionPlanRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.getOne(ctx, `SELECT `+planColumns+` FROM production_plans WHERE id = $1 FOR UPDATE`, id)
}

// FindOpenForUpdate el plan no cumplido más antiguo de la orden para el producto.
func (r *ProductionPlanRepo) FindOpenForUpdate(ctx context.Context, orderID, productID string) (*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans
		WHERE order_id = $1 AND product_id = $2 AND fulfilled_at IS NULL
		ORDER BY created_at, id LIMIT 1 FOR UPDATE`
	return r.getOne(ctx, query, orderID, productID)
}

func (r *ProductionPlanRepo) getOne(ctx context.Context, query string, args ...any) (*entity.ProductionPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get plan", err)
	}
	return p, nil
}

// Update guarda cantidades, splits y cumplimiento.
func (r *ProductionPlanRepo) Update(ctx context.Context, p *entity.ProductionPlan) error {
	query := `
		UPDATE production_plans SET
			planned_qty = $2, dispatched_qty = $3, splits = $4, fulfilled_at = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, p.ID, p.PlannedQty, p.DispatchedQty, p.Splits, p.FulfilledAt, p.UpdatedAt)
	return mapError("update plan", err)
}

// Delete elimina el plan. Las órdenes de trabajo deben borrarse antes.
func (r *ProductionPlanRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM production_plans WHERE id = $1`, id)
	return mapError("delete plan", err)
}

// ListPending planes con cantidad aún sin asignar, más antiguos primero.
func (r *ProductionPlanRepo) ListPending(ctx context.Context) ([]*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans
		WHERE planned_qty < total_qty_to_make ORDER BY created_at, id`
	return r.list(ctx, query)
}

// ListByOrder planes de una orden de venta.
func (r *ProductionPlanRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans WHERE order_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, orderID)
}

func (r *ProductionPlanRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProductionPlan, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list plans", err)
	}
	defer rows.Close()
	var list []*entity.ProductionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, mapError("scan plan", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPlan(row scanner) (*entity.ProductionPlan, error) {
	var p entity.ProductionPlan
	err := row.Scan(
		&p.ID, &p.PlanNumber, &p.OrderID, &p.ProductID, &p.TotalQtyToMake, &p.PlannedQty, &p.DispatchedQty,
		&p.Splits, &p.FulfilledAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
