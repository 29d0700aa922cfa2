package postgres

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores por prefijo en id_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el contador del prefijo (1 la primera vez).
// El upsert bloquea la fila hasta el fin de la transacción.
func (r *SequenceRepo) Next(ctx context.Context, prefix string) (int64, error) {
	query := `
		INSERT INTO id_sequences (prefix, value) VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE SET value = id_sequences.value + 1
		RETURNING value`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix).Scan(&n); err != nil {
		return 0, mapError("next sequence", err)
	}
	return n, nil
}
