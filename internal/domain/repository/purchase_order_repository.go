package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// PurchaseOrderRepository órdenes de compra de materia prima y de trading.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByJobID(ctx context.Context, jobID string) (*entity.PurchaseOrder, error)
	GetByNumber(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error)
	// GetForUpdate OC por número con bloqueo de fila; nil si no existe.
	GetForUpdate(ctx context.Context, poNumber string) (*entity.PurchaseOrder, error)
	// List más recientes primero; status vacío no filtra.
	List(ctx context.Context, status string) ([]*entity.PurchaseOrder, error)
	Update(ctx context.Context, po *entity.PurchaseOrder) error
}
