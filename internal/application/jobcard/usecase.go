// Package jobcard mueve las órdenes de trabajo por el grafo de etapas: kitting,
// reportes de taller, recepción de maquila y el flujo de compra total.
package jobcard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
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

// tradingLeadTime plazo de entrega por defecto de una OC de trading.
const tradingLeadTime = 7 * 24 * time.Hour

// JobCardUseCase operaciones sobre órdenes de trabajo. Cada operación bloquea la orden
// (y los stocks que toque) dentro de una sola transacción.
type JobCardUseCase struct {
	txRunner ports.TxRunner
	repos    repository.TxRepos
	metrics  ports.Metrics
	traveler ports.TravelerRenderer
	log      zerolog.Logger
}

// NewJobCardUseCase construye el caso de uso. traveler puede ser nil si no se exponen PDFs.
func NewJobCardUseCase(
	txRunner ports.TxRunner,
	repos repository.TxRepos,
	metrics ports.Metrics,
	traveler ports.TravelerRenderer,
	log zerolog.Logger,
) *JobCardUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &JobCardUseCase{
		txRunner: txRunner,
		repos:    repos,
		metrics:  metrics,
		traveler: traveler,
		log:      log,
	}
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

func stale(job *entity.JobCard, expected []workflow.Stage) error {
	return &domain.StaleStateError{
		Entity:   "orden de trabajo",
		ID:       job.JobID,
		Current:  string(job.CurrentStep),
		Expected: workflow.Expected(expected),
	}
}

// closed la orden terminó (completada o rechazada) y ya no admite reportes.
func closed(job *entity.JobCard) error {
	return &domain.StaleStateError{
		Entity:  "orden de trabajo",
		ID:      job.JobID,
		Current: string(job.Status),
	}
}

func wrongType(job *entity.JobCard, expected entity.JobType) error {
	return &domain.StaleStateError{
		Entity:   "orden de trabajo",
		ID:       job.JobID,
		Current:  string(job.Type),
		Expected: string(expected),
	}
}

// requirement consumo total de un material para la orden.
type requirement struct {
	materialID string
	qty        decimal.Decimal
}

// requirements agrega qtyPerUnit * totalQty por material (líneas repetidas del BOM se suman),
// ordenado por materialID para bloquear siempre en el mismo orden.
func requirements(bom []entity.BOMLine, totalQty decimal.Decimal) []requirement {
	byID := make(map[string]decimal.Decimal, len(bom))
	for _, line := range bom {
		byID[line.MaterialID] = byID[line.MaterialID].Add(line.QtyPerUnit.Mul(totalQty))
	}
	out := make([]requirement, 0, len(byID))
	for id, qty := range byID {
		out = append(out, requirement{materialID: id, qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].materialID < out[j].materialID })
	return out
}

// IssueKitting entrega la materia prima de la orden. Valida todas las líneas del BOM antes de
// debitar: si alguna falta no se toca ningún stock ni la línea de tiempo, y el error enumera
// todos los materiales cortos. preferredLots (materialID → lotID) es opcional.
func (uc *JobCardUseCase) IssueKitting(ctx context.Context, jobID string, preferredLots map[string]string, actor entity.Actor) (*entity.JobCard, error) {
	var out *entity.JobCard
	var shortCount int
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if !workflow.Allowed(job.CurrentStep, workflow.StageCuttingPending, workflow.TriggerKitting) {
			return stale(job, workflow.Sources(workflow.StageCuttingPending, workflow.TriggerKitting))
		}
		product, err := r.Products.GetByID(ctx, job.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto", job.ProductID)
		}
		if len(product.BOM) == 0 {
			return domain.Invalid("bom", "el producto no tiene lista de materiales")
		}
		reqs := requirements(product.BOM, job.TotalQty)
		for materialID := range preferredLots {
			found := false
			for _, rq := range reqs {
				if rq.materialID == materialID {
					found = true
					break
				}
			}
			if !found {
				return domain.Invalid("preferred_lots", "el material "+materialID+" no está en el BOM")
			}
		}

		// Fase 1: bloquear y planificar todo sin mutar.
		stocks := make([]*entity.MaterialStock, len(reqs))
		picks := make([][]entity.Pick, len(reqs))
		var shortfalls []domain.Shortfall
		for i, rq := range reqs {
			st, err := r.Stocks.GetForUpdate(ctx, rq.materialID, entity.PoolRaw)
			if err != nil {
				return err
			}
			if st == nil {
				return domain.NotFound("material", rq.materialID)
			}
			p, short := inventory.PlanDebit(st, rq.qty, preferredLots[rq.materialID])
			if short != nil {
				shortfalls = append(shortfalls, *short)
				continue
			}
			stocks[i], picks[i] = st, p
		}
		if len(shortfalls) > 0 {
			shortCount = len(shortfalls)
			return &domain.InsufficientStockError{Shortfalls: shortfalls}
		}

		// Fase 2: aplicar.
		now := time.Now()
		entry := appinventory.Entry{Reference: job.JobID, Reason: "kitting", Actor: actor.Label(), At: now}
		for i := range reqs {
			inventory.ApplyDebit(stocks[i], picks[i])
			if err := appinventory.SaveWithMovements(ctx, r, stocks[i], picks[i], entity.MovementTypeOUT, entry); err != nil {
				return err
			}
			for _, p := range picks[i] {
				job.IssuedMaterials = append(job.IssuedMaterials, entity.IssuedMaterial{
					MaterialID: p.ItemID,
					LotID:      p.LotID,
					Quantity:   p.Quantity,
					IssuedAt:   now,
					IssuedBy:   actor.Label(),
				})
			}
		}

		cutting := job.Routing.Cutting
		job.VendorID = cutting.VendorID
		job.Append(entity.TimelineEntry{
			Stage:  entity.TimelineKitting,
			Action: "Materiales entregados",
			Detail: fmt.Sprintf("%d materiales, %d lotes", len(reqs), len(job.IssuedMaterials)),
			Vendor: cutting.Label(),
			Actor:  actor.Label(),
			At:     now,
		})
		job.Move(workflow.StageCuttingPending, now)
		if err := r.Jobs.Update(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	if err != nil {
		if shortCount > 0 {
			uc.metrics.KittingShortfall(shortCount)
			uc.log.Warn().Str("job_id", jobID).Int("short_materials", shortCount).Msg("kitting rechazado por faltante")
		}
		return nil, err
	}
	uc.metrics.KittingIssued(string(out.Type))
	uc.log.Info().Str("job_id", jobID).Int("lots", len(out.IssuedMaterials)).Msg("kitting emitido")
	return out, nil
}

// AdvanceStage registra el resultado reportado por el taller. El resultado debe ser el sucesor
// legal de la etapa actual; de lo contrario es estado obsoleto y no se corrige en silencio.
// Las etapas *_COMPLETED se entregan automáticamente al siguiente proceso.
func (uc *JobCardUseCase) AdvanceStage(ctx context.Context, jobID string, reported workflow.Stage, actor entity.Actor) (*entity.JobCard, error) {
	if len(workflow.Sources(reported, workflow.TriggerStageReport)) == 0 {
		return nil, domain.Invalid("stage", fmt.Sprintf("%s no es un resultado reportable", reported))
	}
	var out *entity.JobCard
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if job.Status.Closed() {
			return closed(job)
		}
		if !workflow.Allowed(job.CurrentStep, reported, workflow.TriggerStageReport) {
			return stale(job, workflow.Sources(reported, workflow.TriggerStageReport))
		}
		now := time.Now()
		process := job.CurrentStep.Process()
		step := job.Routing.Step(process)
		job.Append(entity.TimelineEntry{
			Stage:  process,
			Action: "Reporte: " + string(reported),
			Vendor: step.Label(),
			Actor:  actor.Label(),
			At:     now,
		})
		job.Move(reported, now)

		awaitingAssembly := false
		if job.TwoStageQC {
			sfg, err := r.Stocks.Get(ctx, job.ProductID, entity.PoolSemiFinished)
			if err != nil {
				return err
			}
			awaitingAssembly = !quality.AssemblyPassed(job, sfg)
		}
		if next, ok := workflow.HandoverTarget(reported, awaitingAssembly); ok {
			if !workflow.Allowed(reported, next, workflow.TriggerHandover) {
				return stale(job, []workflow.Stage{reported})
			}
			nextStep := job.Routing.Step(next.Process())
			action := "Entrega automática a " + string(next)
			if next == workflow.StageQCPending {
				action = "Entrega a QC de ensamble"
			}
			job.VendorID = nextStep.VendorID
			job.Append(entity.TimelineEntry{
				Stage:  process,
				Action: action,
				Vendor: nextStep.Label(),
				Actor:  actor.Label(),
				At:     now,
			})
			job.Move(next, now)
		}
		if err := r.Jobs.Update(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StageAdvanced(string(out.CurrentStep))
	return out, nil
}

// ReceiveFromVendor registra la producción y merma autorreportadas por el maquilador y pasa
// la orden a QC. No toca stock.
func (uc *JobCardUseCase) ReceiveFromVendor(ctx context.Context, jobID string, actualQty, wastageQty decimal.Decimal, actor entity.Actor) (*entity.JobCard, error) {
	if !actualQty.IsPositive() {
		return nil, domain.Invalid("actual_qty", "debe ser mayor que cero")
	}
	if wastageQty.IsNegative() {
		return nil, domain.Invalid("wastage_qty", "no puede ser negativo")
	}
	var out *entity.JobCard
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if job.Status.Closed() {
			return closed(job)
		}
		if job.Type != entity.JobWork {
			return wrongType(job, entity.JobWork)
		}
		if !workflow.Allowed(job.CurrentStep, workflow.StageQCPending, workflow.TriggerVendorDispatch) {
			return stale(job, workflow.Sources(workflow.StageQCPending, workflow.TriggerVendorDispatch))
		}
		now := time.Now()
		process := job.CurrentStep.Process()
		step := job.Routing.Step(process)
		job.VendorReport = &entity.VendorReport{
			ActualQty:   actualQty,
			WastageQty:  wastageQty,
			ReportedBy:  actor.Label(),
			ReportedAt:  now,
			ReceivedFor: process,
		}
		job.Append(entity.TimelineEntry{
			Stage:  process,
			Action: "Recibido de maquila",
			Detail: fmt.Sprintf("producido %s, merma %s", actualQty, wastageQty),
			Vendor: step.Label(),
			Actor:  actor.Label(),
			At:     now,
		})
		job.Move(workflow.StageQCPending, now)
		if err := r.Jobs.Update(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StageAdvanced(string(out.CurrentStep))
	return out, nil
}

// RaiseTradingPO emite la OC de una orden de compra total y la pasa a PO_RAISED.
func (uc *JobCardUseCase) RaiseTradingPO(ctx context.Context, jobID, vendorID string, unitCost decimal.Decimal, actor entity.Actor) (*entity.PurchaseOrder, error) {
	if vendorID == "" {
		return nil, domain.Invalid("vendor_id", "requerido")
	}
	if unitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	var po *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if job.Type != entity.JobFullBuy {
			return wrongType(job, entity.JobFullBuy)
		}
		if !workflow.Allowed(job.CurrentStep, workflow.StagePORaised, workflow.TriggerRaisePO) {
			return stale(job, workflow.Sources(workflow.StagePORaised, workflow.TriggerRaisePO))
		}
		n, err := r.Sequences.Next(ctx, "PO-TR")
		if err != nil {
			return err
		}
		now := time.Now()
		po = &entity.PurchaseOrder{
			ID:          uuid.New().String(),
			PONumber:    fmt.Sprintf("PO-TR-%06d", n),
			JobID:       job.JobID,
			VendorID:    vendorID,
			ItemType:    entity.POItemProduct,
			ItemID:      job.ProductID,
			Quantity:    job.TotalQty,
			UnitCost:    unitCost,
			Status:      entity.POStatusIssued,
			ExpectedAt:  now.Add(tradingLeadTime),
			ReceivedQty: decimal.Zero,
			CreatedBy:   actor.Label(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.PurchaseOrders.Create(ctx, po); err != nil {
			return err
		}
		job.VendorID = vendorID
		job.Append(entity.TimelineEntry{
			Stage:  "Procurement",
			Action: "OC emitida",
			Detail: fmt.Sprintf("%s por %s", po.PONumber, po.Total().StringFixed(2)),
			Vendor: vendorID,
			Actor:  actor.Label(),
			At:     now,
		})
		job.Move(workflow.StagePORaised, now)
		return r.Jobs.Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StageAdvanced(string(workflow.StagePORaised))
	return po, nil
}

// ReceiveTradingGoods registra la llegada de la mercancía comprada y pasa la orden a QC.
// Si llega menos de lo pedido la cantidad de la orden se ajusta a lo recibido.
func (uc *JobCardUseCase) ReceiveTradingGoods(ctx context.Context, jobID string, qtyReceived decimal.Decimal, actor entity.Actor) (*entity.JobCard, error) {
	if !qtyReceived.IsPositive() {
		return nil, domain.Invalid("qty_received", "debe ser mayor que cero")
	}
	var out *entity.JobCard
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		job, err := lockJob(ctx, r, jobID)
		if err != nil {
			return err
		}
		if !workflow.Allowed(job.CurrentStep, workflow.StageQCPending, workflow.TriggerGoodsReceipt) {
			return stale(job, workflow.Sources(workflow.StageQCPending, workflow.TriggerGoodsReceipt))
		}
		po, err := r.PurchaseOrders.GetByJobID(ctx, job.JobID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.NotFound("orden de compra", job.JobID)
		}
		if qtyReceived.GreaterThan(po.Quantity) {
			return domain.Invalid("qty_received", "supera la cantidad de la OC")
		}
		now := time.Now()
		po.ReceivedQty = qtyReceived
		po.ReceivedAt = &now
		po.Receipts = append(po.Receipts, entity.POReceipt{
			Quantity: qtyReceived,
			Result:   entity.ReceiptDirect,
			Actor:    actor.Label(),
			At:       now,
		})
		po.Status = entity.POStatusReceived
		po.UpdatedAt = now
		if err := r.PurchaseOrders.Update(ctx, po); err != nil {
			return err
		}
		detail := fmt.Sprintf("%s: recibidas %s", po.PONumber, qtyReceived)
		if qtyReceived.LessThan(job.TotalQty) {
			detail += fmt.Sprintf(" de %s; cantidad ajustada", job.TotalQty)
			job.TotalQty = qtyReceived
		}
		job.Append(entity.TimelineEntry{
			Stage:  "Procurement",
			Action: "Mercancía recibida",
			Detail: detail,
			Vendor: po.VendorID,
			Actor:  actor.Label(),
			At:     now,
		})
		job.Move(workflow.StageQCPending, now)
		if err := r.Jobs.Update(ctx, job); err != nil {
			return err
		}
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StageAdvanced(string(out.CurrentStep))
	return out, nil
}

// GetJob lectura puntual.
func (uc *JobCardUseCase) GetJob(ctx context.Context, jobID string) (*entity.JobCard, error) {
	job, err := uc.repos.Jobs.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.NotFound("orden de trabajo", jobID)
	}
	return job, nil
}

// ListJobs listado filtrado, más recientes primero.
func (uc *JobCardUseCase) ListJobs(ctx context.Context, filter repository.JobCardFilter) ([]*entity.JobCard, error) {
	jobs, err := uc.repos.Jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

// Timeline historial de auditoría de la orden.
func (uc *JobCardUseCase) Timeline(ctx context.Context, jobID string) ([]entity.TimelineEntry, error) {
	job, err := uc.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job.Timeline, nil
}

// TravelerPDF hoja de ruta imprimible con picking y línea de tiempo.
func (uc *JobCardUseCase) TravelerPDF(ctx context.Context, jobID string) ([]byte, error) {
	if uc.traveler == nil {
		return nil, fmt.Errorf("generador de hoja de ruta no configurado")
	}
	job, err := uc.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	product, err := uc.repos.Products.GetByID(ctx, job.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", job.ProductID)
	}
	return uc.traveler.Render(ports.TravelerData{Job: job, Product: product})
}
