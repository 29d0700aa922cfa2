package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.JobCardRepository = (*JobCardRepo)(nil)

const jobColumns = `id, job_id, plan_id, order_id, product_id, type, total_qty, current_step, status, two_stage_qc,
	routing, vendor_id, issued_materials, vendor_report, qc_result, timeline, created_at, updated_at`

// JobCardRepo órdenes de trabajo; routing, picking, QC y timeline en JSONB.
type JobCardRepo struct {
	q Querier
}

// NewJobCardRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJobCardRepository(q Querier) *JobCardRepo {
	return &JobCardRepo{q: q}
}

// Create inserta la orden de trabajo.
func (r *JobCardRepo) Create(ctx context.Context, j *entity.JobCard) error {
	query := `INSERT INTO job_cards (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		j.ID, j.JobID, j.PlanID, j.OrderID, j.ProductID, j.Type, j.TotalQty, j.CurrentStep, j.Status, j.TwoStageQC,
		j.Routing, nullString(j.VendorID), j.IssuedMaterials, j.VendorReport, j.QCResult, j.Timeline, j.CreatedAt, j.UpdatedAt,
	)
	return mapError("insert job card", err)
}

// GetByJobID obtiene una orden por su identificador legible; nil si no existe.
func (r *JobCardRepo) GetByJobID(ctx context.Context, jobID string) (*entity.JobCard, error) {
	return r.getOne(ctx, `SELECT `+jobColumns+` FROM job_cards WHERE job_id = $1`, jobID)
}

// GetForUpdate obtiene la orden con bloqueo de fila.
func (r *JobCardRepo) GetForUpdate(ctx context.Context, jobID string) (*entity.JobCard, error) {
	return r.getOne(ctx, `SELECT `+jobColumns+` FROM job_cards WHERE job_id = $1 FOR UPDATE`, jobID)
}

func (r *JobCardRepo) getOne(ctx context.Context, query, jobID string) (*entity.JobCard, error) {
	j, err := scanJob(r.q.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get job card", err)
	}
	return j, nil
}

// Update guarda el estado completo de la orden.
func (r *JobCardRepo) Update(ctx context.Context, j *entity.JobCard) error {
	query := `
		UPDATE job_cards SET
			total_qty = $2, current_step = $3, status = $4, vendor_id = $5, issued_materials = $6,
			vendor_report = $7, qc_result = $8, timeline = $9, updated_at = $10
		WHERE job_id = $1`
	_, err := r.q.Exec(ctx, query,
		j.JobID, j.TotalQty, j.CurrentStep, j.Status, nullString(j.VendorID), j.IssuedMaterials,
		j.VendorReport, j.QCResult, j.Timeline, j.UpdatedAt,
	)
	return mapError("update job card", err)
}

// Delete elimina la orden (y su OC por cascada).
func (r *JobCardRepo) Delete(ctx context.Context, jobID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM job_cards WHERE job_id = $1`, jobID)
	return mapError("delete job card", err)
}

// List filtra por etapa, tipo, estado y plan (campos vacíos no filtran).
func (r *JobCardRepo) List(ctx context.Context, f repository.JobCardFilter) ([]*entity.JobCard, error) {
	query := `SELECT ` + jobColumns + ` FROM job_cards WHERE 1=1`
	var args []any
	pos := 1
	add := func(col string, v any) {
		query += fmt.Sprintf(" AND %s = $%d", col, pos)
		args = append(args, v)
		pos++
	}
	if f.Step != "" {
		add("current_step", f.Step)
	}
	if f.Type != "" {
		add("type", f.Type)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.PlanID != "" {
		add("plan_id", f.PlanID)
	}
	query += ` ORDER BY job_id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list job cards", err)
	}
	defer rows.Close()
	var list []*entity.JobCard
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, mapError("scan job card", err)
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

func scanJob(row scanner) (*entity.JobCard, error) {
	var j entity.JobCard
	var vendorID *string
	err := row.Scan(
		&j.ID, &j.JobID, &j.PlanID, &j.OrderID, &j.ProductID, &j.Type, &j.TotalQty, &j.CurrentStep, &j.Status, &j.TwoStageQC,
		&j.Routing, &vendorID, &j.IssuedMaterials, &j.VendorReport, &j.QCResult, &j.Timeline, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.VendorID = deref(vendorID)
	return &j, nil
}
