package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, item_id, pool, name, unit, cost_per_unit, avg_consumption, lead_time_days,
	safety_stock, stock_at_least, health, reserved, lots, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Create inserta el registro de stock con sus lotes iniciales.
func (r *StockRepo) Create(ctx context.Context, s *entity.MaterialStock) error {
	query := `INSERT INTO material_stocks (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.ItemID, s.Pool, s.Name, s.Unit, s.CostPerUnit, s.AvgConsumption, s.LeadTimeDays,
		s.SafetyStock, s.StockAtLeast, s.Health, s.Reserved, s.Lots, s.CreatedAt, s.UpdatedAt,
	)
	return mapError("insert stock", err)
}

// Get obtiene el stock de un item en un pool; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks WHERE item_id = $1 AND pool = $2`
	return r.getOne(ctx, "get stock", query, itemID, pool)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks WHERE item_id = $1 AND pool = $2 FOR UPDATE`
	return r.getOne(ctx, "get stock for update", query, itemID, pool)
}

func (r *StockRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.MaterialStock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return s, nil
}

// Save reescribe lotes, reservado, costo y salud.
func (r *StockRepo) Save(ctx context.Context, s *entity.MaterialStock) error {
	query := `
		UPDATE material_stocks SET
			name = $3, unit = $4, cost_per_unit = $5, avg_consumption = $6, lead_time_days = $7,
			safety_stock = $8, stock_at_least = $9, health = $10, reserved = $11, lots = $12, updated_at = $13
		WHERE item_id = $1 AND pool = $2`
	tag, err := r.q.Exec(ctx, query,
		s.ItemID, s.Pool, s.Name, s.Unit, s.CostPerUnit, s.AvgConsumption, s.LeadTimeDays,
		s.SafetyStock, s.StockAtLeast, s.Health, s.Reserved, s.Lots, s.UpdatedAt,
	)
	if err != nil {
		return mapError("save stock", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save stock %s/%s: sin filas", s.ItemID, s.Pool)
	}
	return nil
}

// List lista los registros de un pool (todos si pool es vacío).
func (r *StockRepo) List(ctx context.Context, pool entity.StockPool) ([]*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks`
	var args []any
	if pool != "" {
		query += ` WHERE pool = $1`
		args = append(args, pool)
	}
	query += ` ORDER BY item_id, pool`
	return r.list(ctx, "list stock", query, args...)
}

// ListForUpdate bloquea todos los registros en orden estable.
func (r *StockRepo) ListForUpdate(ctx context.Context) ([]*entity.MaterialStock, error) {
	query := `SELECT ` + stockColumns + ` FROM material_stocks ORDER BY item_id, pool FOR UPDATE`
	return r.list(ctx, "list stock for update", query)
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.MaterialStock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.MaterialStock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStock(row scanner) (*entity.MaterialStock, error) {
	var s entity.MaterialStock
	err := row.Scan(
		&s.ID, &s.ItemID, &s.Pool, &s.Name, &s.Unit, &s.CostPerUnit, &s.AvgConsumption, &s.LeadTimeDays,
		&s.SafetyStock, &s.StockAtLeast, &s.Health, &s.Reserved, &s.Lots, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
