package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ProductionPlanRepository persistencia de planes (splits embebidos).
type ProductionPlanRepository interface {
	Create(ctx context.Context, plan *entity.ProductionPlan) error
	GetByID(ctx context.Context, id string) (*entity.ProductionPlan, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error)
	// FindOpenForUpdate plan no cumplido de una orden+producto, bloqueado; nil si no hay.
	FindOpenForUpdate(ctx context.Context, orderID, productID string) (*entity.ProductionPlan, error)
	Update(ctx context.Context, plan *entity.ProductionPlan) error
	Delete(ctx context.Context, id string) error
	// ListPending planes con cantidad aún sin asignar.
	ListPending(ctx context.Context) ([]*entity.ProductionPlan, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.ProductionPlan, error)
}
