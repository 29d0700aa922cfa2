package ports

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y nada queda aplicado; no hay reintento automático.
type TxRunner interface {
	Run(ctx context.Context, fn func(r repository.TxRepos) error) error
}
