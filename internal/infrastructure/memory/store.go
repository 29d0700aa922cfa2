// Package memory implementa los repositorios sobre un estado en memoria con la misma
// semántica transaccional que PostgreSQL: un escritor a la vez, cada transacción trabaja
// sobre una copia del estado y solo se publica al confirmar.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// errReadOnly escritura sobre la vista de lectura (fuera de Run).
var errReadOnly = errors.New("memory: escritura fuera de transacción")

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	stocks    map[string]*entity.MaterialStock // itemID|pool
	products  map[string]*entity.Product
	movements []*entity.InventoryMovement
	plans     map[string]*entity.ProductionPlan
	jobs      map[string]*entity.JobCard       // jobID
	orders    map[string]*entity.Order         // orderNumber
	pos       map[string]*entity.PurchaseOrder // poNumber
	seq       map[string]int64
}

func newState() *state {
	return &state{
		stocks:   map[string]*entity.MaterialStock{},
		products: map[string]*entity.Product{},
		plans:    map[string]*entity.ProductionPlan{},
		jobs:     map[string]*entity.JobCard{},
		orders:   map[string]*entity.Order{},
		pos:      map[string]*entity.PurchaseOrder{},
		seq:      map[string]int64{},
	}
}

// clone copia el estado. Los valores guardados nunca se mutan en sitio (los repos
// devuelven y guardan copias), así que basta con copiar los mapas.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	c.movements = append([]*entity.InventoryMovement(nil), s.movements...)
	for k, v := range s.plans {
		c.plans[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.pos {
		c.pos[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

// Store estado confirmado más el candado de escritor único.
type Store struct {
	writer    sync.Mutex
	mu        sync.RWMutex
	committed *state
}

// New store vacío.
func New() *Store {
	return &Store{committed: newState()}
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// Run ejecuta fn sobre una copia del estado; si fn no devuelve error la copia se publica.
// Las transacciones se serializan: dos kitting concurrentes nunca ven el mismo stock.
func (s *Store) Run(ctx context.Context, fn func(r repository.TxRepos) error) error {
	s.writer.Lock()
	defer s.writer.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.snapshot().clone()
	if err := fn(reposFor(func() *state { return work }, false)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

// Repos vista de solo lectura sobre el último estado confirmado.
func (s *Store) Repos() repository.TxRepos {
	return reposFor(s.snapshot, true)
}
