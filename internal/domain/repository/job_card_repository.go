package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
)

// JobCardFilter filtros opcionales de listado; vacío = sin filtro.
type JobCardFilter struct {
	Step   workflow.Stage
	Type   entity.JobType
	Status workflow.Status
	PlanID string
}

// Match indica si la orden cumple el filtro.
func (f JobCardFilter) Match(j *entity.JobCard) bool {
	return (f.Step == "" || j.CurrentStep == f.Step) &&
		(f.Type == "" || j.Type == f.Type) &&
		(f.Status == "" || j.Status == f.Status) &&
		(f.PlanID == "" || j.PlanID == f.PlanID)
}

// JobCardRepository persistencia de órdenes de trabajo (timeline, picking y QC embebidos).
type JobCardRepository interface {
	Create(ctx context.Context, job *entity.JobCard) error
	GetByJobID(ctx context.Context, jobID string) (*entity.JobCard, error)
	GetForUpdate(ctx context.Context, jobID string) (*entity.JobCard, error)
	Update(ctx context.Context, job *entity.JobCard) error
	Delete(ctx context.Context, jobID string) error
	List(ctx context.Context, filter JobCardFilter) ([]*entity.JobCard, error)
}
