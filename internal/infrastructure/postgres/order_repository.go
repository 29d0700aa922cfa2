package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, customer_name, priority, delivery_date, status, items, dispatch, created_at, updated_at`

// OrderRepo órdenes de venta; líneas y datos de despacho en JSONB.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la orden.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.CustomerName, o.Priority, o.DeliveryDate, o.Status, o.Items, o.Dispatch, o.CreatedAt, o.UpdatedAt,
	)
	return mapError("insert order", err)
}

// GetByID obtiene una orden por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByNumber obtiene una orden por número (ORD-2026-000001).
func (r *OrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

// GetForUpdate obtiene la orden por número con bloqueo de fila.
func (r *OrderRepo) GetForUpdate(ctx context.Context, orderNumber string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1 FOR UPDATE`, orderNumber)
}

func (r *OrderRepo) getOne(ctx context.Context, query, arg string) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.Priority, &o.DeliveryDate, &o.Status, &o.Items, &o.Dispatch, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get order", err)
	}
	return &o, nil
}

// Update guarda estado, asignaciones y despacho.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `UPDATE orders SET status = $2, items = $3, dispatch = $4, updated_at = $5 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, o.ID, o.Status, o.Items, o.Dispatch, o.UpdatedAt)
	return mapError("update order", err)
}
