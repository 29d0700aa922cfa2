// Package quality aplica las compuertas de calidad: verificación automática con crédito de
// stock, retención para revisión administrativa y la doble compuerta ensamble/final.
package quality

import (
	"context"
	"fmt"
	"sort"
	"time"

	appinventory "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/quality"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// QualityUseCase inspección y revisión de órdenes en QC.
type QualityUseCase struct {
	txRunner ports.TxRunner
	repos    repository.TxRepos
	metrics  ports.Metrics
	log      zerolog.Logger
}

// NewQualityUseCase construye el caso de uso.
func NewQualityUseCase(txRunner ports.TxRunner, repos repository.TxRepos, metrics ports.Metrics, log zerolog.Logger) *QualityUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &QualityUseCase{txRunner: txRunner, repos: repos, metrics: metrics, log: log}
}

// Inspection datos de la muestra inspeccionada.
type Inspection struct {
	SampleSize  decimal.Decimal
	RejectedQty decimal.Decimal
	Notes       string
}

// SubmitQC evalúa la muestra. Con tasa de defectos >= 20% la orden queda retenida sin acreditar
// stock; por debajo se acredita passedQty en el pool que corresponda a la compuerta.
// Devuelve la orden y la decisión (VERIFIED | HELD).
func (uc *QualityUseCase) SubmitQC(ctx context.Context, jobID string, in Inspection, inspector entity.Actor) (*entity.JobCard, string, error) {
	var out *entity.JobCard
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if job.CurrentStep != workflow.StageQCPending {
			return stale(job, []workflow.Stage{workflow.StageQCPending})
		}
		eval, err := quality.Evaluate(job.TotalQty, in.SampleSize, in.RejectedQty)
		if err != nil {
			return err
		}
		sfg, err := lockPool(ctx, r, job.ProductID, entity.PoolSemiFinished)
		if err != nil {
			return err
		}
		now := time.Now()
		gate := quality.NextGate(job, sfg)
		// en la compuerta final lo aprobado sale del lote SFG que efectivamente pasó ensamble
		eval.PassedQty = quality.PassedQty(quality.InspectedQty(job, sfg, gate), in.RejectedQty)
		job.QCResult = &entity.QCResult{
			Gate:        gate,
			SampleSize:  in.SampleSize,
			RejectedQty: in.RejectedQty,
			PassedQty:   eval.PassedQty,
			DefectRate:  eval.DefectRate,
			Inspector:   inspector.Label(),
			Notes:       in.Notes,
			At:          now,
		}

		if eval.Hold {
			job.QCResult.Decision = entity.QCHeld
			job.Append(entity.TimelineEntry{
				Stage:  entity.TimelineQCHold,
				Action: fmt.Sprintf("Retenido: %.1f%% de defectos en %s", eval.DefectRate, gateName(gate)),
				Detail: in.Notes,
				Actor:  inspector.Label(),
				At:     now,
			})
			job.Move(workflow.StageQCReviewNeeded, now)
		} else {
			job.QCResult.Decision = entity.QCVerified
			trigger := workflow.TriggerQCFinalPass
			if gate == entity.GateAssembly {
				trigger = workflow.TriggerQCAssemblyPass
			}
			action := fmt.Sprintf("Verificado: %.1f%% de defectos, %s aprobadas", eval.DefectRate, eval.PassedQty)
			if err := passGate(ctx, r, job, sfg, gate, trigger, eval.PassedQty, action, in.Notes, inspector, now); err != nil {
				return err
			}
		}
		if err := r.Jobs.Update(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	qc := out.QCResult
	uc.metrics.QCDecision(qc.Gate, qc.Decision)
	ev := uc.log.Info()
	if qc.Decision == entity.QCHeld {
		ev = uc.log.Warn()
	}
	ev.Str("job_id", jobID).
		Int("gate", qc.Gate).
		Float64("defect_rate", qc.DefectRate).
		Str("passed_qty", qc.PassedQty.String()).
		Str("decision", qc.Decision).
		Msg("inspección de calidad")
	return out, qc.Decision, nil
}

// ReviewHeld decisión administrativa sobre una orden retenida. approve acredita como el paso
// automático usando la compuerta y la cantidad aprobada guardadas en qcResult; reject desecha
// la orden sin acreditar nada.
func (uc *QualityUseCase) ReviewHeld(ctx context.Context, jobID string, approve bool, notes string, admin entity.Actor) (*entity.JobCard, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	var out *entity.JobCard
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if job.Status != workflow.StatusQCHold || job.CurrentStep != workflow.StageQCReviewNeeded || job.QCResult == nil {
			return stale(job, []workflow.Stage{workflow.StageQCReviewNeeded})
		}
		now := time.Now()
		qc := job.QCResult
		if !approve {
			qc.Decision = entity.QCRejected
			job.Append(entity.TimelineEntry{
				Stage:  entity.TimelineQCReview,
				Action: "Rechazado por " + admin.Label(),
				Detail: notes,
				Actor:  admin.Label(),
				At:     now,
			})
			job.Move(workflow.StageScrapped, now)
			out = job
			return r.Jobs.Update(ctx, job)
		}

		sfg, err := lockPool(ctx, r, job.ProductID, entity.PoolSemiFinished)
		if err != nil {
			return err
		}
		trigger := workflow.TriggerReviewApproveFinal
		if qc.Gate == entity.GateAssembly {
			trigger = workflow.TriggerReviewApproveAssembly
		}
		qc.Decision = entity.QCApproved
		action := fmt.Sprintf("Aprobado por %s, %s aprobadas", admin.Label(), qc.PassedQty)
		if err := passGate(ctx, r, job, sfg, qc.Gate, trigger, qc.PassedQty, action, notes, admin, now); err != nil {
			return err
		}
		out = job
		return r.Jobs.Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	qc := out.QCResult
	uc.metrics.QCDecision(qc.Gate, qc.Decision)
	uc.log.Warn().
		Str("job_id", jobID).
		Str("admin", admin.Label()).
		Int("gate", qc.Gate).
		Str("decision", qc.Decision).
		Msg("revisión administrativa de calidad")
	return out, nil
}

// passGate acredita el stock de la compuerta y mueve la orden.
// Compuerta 1: lote SFG-<jobID> en semiterminado, siguiente etapa empaque.
// Compuerta 2: retira los lotes SFG-<jobID> y crea un único lote FG-<jobID> en terminado.
func passGate(
	ctx context.Context,
	r repository.TxRepos,
	job *entity.JobCard,
	sfg *entity.MaterialStock,
	gate int, trigger workflow.Trigger,
	passedQty decimal.Decimal,
	action, notes string,
	actor entity.Actor,
	now time.Time,
) error {
	entry := appinventory.Entry{Reference: job.JobID, Reason: gateName(gate), Actor: actor.Label(), At: now}

	if gate == entity.GateAssembly {
		if !workflow.Allowed(job.CurrentStep, workflow.StagePackagingPending, trigger) {
			return stale(job, workflow.Sources(workflow.StagePackagingPending, trigger))
		}
		if passedQty.IsPositive() {
			if err := appinventory.CreditLocked(ctx, r, sfg, passedQty, entity.SemiFinishedLotID(job.JobID), nil, entry); err != nil {
				return err
			}
		}
		job.VendorID = job.Routing.Packing.VendorID
		job.Append(entity.TimelineEntry{
			Stage:  entity.TimelineAssemblyQC,
			Action: action,
			Detail: notes,
			Actor:  actor.Label(),
			At:     now,
		})
		job.Move(workflow.StagePackagingPending, now)
		return nil
	}

	if !workflow.Allowed(job.CurrentStep, workflow.StageQCCompleted, trigger) {
		return stale(job, workflow.Sources(workflow.StageQCCompleted, trigger))
	}
	lotID := entity.SemiFinishedLotID(job.JobID)
	if qty, ok := inventory.RemoveLot(sfg, lotID); ok {
		picks := []entity.Pick{{ItemID: sfg.ItemID, LotID: lotID, Quantity: qty}}
		if err := appinventory.SaveWithMovements(ctx, r, sfg, picks, entity.MovementTypeOUT, entry); err != nil {
			return err
		}
	}
	if passedQty.IsPositive() {
		fg, err := lockPool(ctx, r, job.ProductID, entity.PoolFinished)
		if err != nil {
			return err
		}
		if err := appinventory.CreditLocked(ctx, r, fg, passedQty, entity.FinishedLotID(job.JobID), nil, entry); err != nil {
			return err
		}
	}
	job.VendorID = ""
	job.Append(entity.TimelineEntry{
		Stage:  entity.TimelineFinalQC,
		Action: action,
		Detail: notes,
		Actor:  actor.Label(),
		At:     now,
	})
	job.Move(workflow.StageQCCompleted, now)
	return nil
}

func gateName(gate int) string {
	if gate == entity.GateAssembly {
		return "QC de ensamble"
	}
	return "QC final"
}

func lockJob(ctx context.Context, r repository.TxRepos, jobID string) (*entity.JobCard, error) {
	job, err := r.Jobs.GetForUpdate(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.NotFound("orden de trabajo", jobID)
	}
	return job, nil
}

func lockPool(ctx context.Context, r repository.TxRepos, productID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	st, err := r.Stocks.GetForUpdate(ctx, productID, pool)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, domain.NotFound("stock "+string(pool), productID)
	}
	return st, nil
}

func stale(job *entity.JobCard, expected []workflow.Stage) error {
	return &domain.StaleStateError{
		Entity:   "orden de trabajo",
		ID:       job.JobID,
		Current:  string(job.CurrentStep),
		Expected: workflow.Expected(expected),
	}
}

// ListPendingQC órdenes esperando inspección.
func (uc *QualityUseCase) ListPendingQC(ctx context.Context) ([]*entity.JobCard, error) {
	return uc.list(ctx, repository.JobCardFilter{Step: workflow.StageQCPending})
}

// ListHeld órdenes retenidas esperando revisión administrativa.
func (uc *QualityUseCase) ListHeld(ctx context.Context) ([]*entity.JobCard, error) {
	return uc.list(ctx, repository.JobCardFilter{Status: workflow.StatusQCHold})
}

func (uc *QualityUseCase) list(ctx context.Context, f repository.JobCardFilter) ([]*entity.JobCard, error) {
	jobs, err := uc.repos.Jobs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].UpdatedAt.Before(jobs[j].UpdatedAt) })
	return jobs, nil
}
