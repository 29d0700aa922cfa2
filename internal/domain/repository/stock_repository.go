package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// StockRepository puerto de persistencia del libro de materiales (un registro por item+pool, lotes embebidos).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Create(ctx context.Context, stock *entity.MaterialStock) error
	// Get devuelve nil, nil si no existe.
	Get(ctx context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, itemID string, pool entity.StockPool) (*entity.MaterialStock, error)
	Save(ctx context.Context, stock *entity.MaterialStock) error
	// List con pool vacío devuelve todos los pools.
	List(ctx context.Context, pool entity.StockPool) ([]*entity.MaterialStock, error)
	// ListForUpdate bloquea todos los registros en orden de item (recálculo de salud).
	ListForUpdate(ctx context.Context) ([]*entity.MaterialStock, error)
}
