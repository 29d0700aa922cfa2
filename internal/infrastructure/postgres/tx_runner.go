package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los conflictos de concurrencia se devuelven como domain.ErrConcurrencyConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repos(tx)); err != nil {
		if isConcurrencyFailure(err) && !errors.Is(err, domain.ErrConcurrencyConflict) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// Repos arma el juego de repositorios sobre un pool (lecturas) o una tx.
func Repos(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Stocks:         NewStockRepository(q),
		Products:       NewProductRepository(q),
		Movements:      NewInventoryMovementRepository(q),
		Plans:          NewProductionPlanRepository(q),
		Jobs:           NewJobCardRepository(q),
		Orders:         NewOrderRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Sequences:      NewSequenceRepository(q),
	}
}
