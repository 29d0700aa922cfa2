// Package planning crea órdenes de venta con sus planes de producción y reparte cada plan
// en órdenes de trabajo (fabricación propia, maquila o compra total).
package planning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PlanningUseCase órdenes de venta, planes y confirmación de estrategia.
type PlanningUseCase struct {
	txRunner ports.TxRunner
	repos    repository.TxRepos
	log      zerolog.Logger
}

// NewPlanningUseCase construye el caso de uso.
func NewPlanningUseCase(txRunner ports.TxRunner, repos repository.TxRepos, log zerolog.Logger) *PlanningUseCase {
	return &PlanningUseCase{txRunner: txRunner, repos: repos, log: log}
}

// OrderItemInput línea pedida.
type OrderItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// OrderInput alta de orden de venta.
type OrderInput struct {
	CustomerName string
	Priority     string
	DeliveryDate *time.Time
	Items        []OrderItemInput
}

// CreateOrder guarda la orden y un plan de producción por línea, en una sola transacción.
func (uc *PlanningUseCase) CreateOrder(ctx context.Context, in OrderInput) (*entity.Order, []*entity.ProductionPlan, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, nil, domain.Invalid("customer_name", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, nil, domain.Invalid("items", "la orden no tiene líneas")
	}
	seen := make(map[string]bool, len(in.Items))
	for i, it := range in.Items {
		if it.ProductID == "" {
			return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if !it.Quantity.IsPositive() {
			return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if seen[it.ProductID] {
			return nil, nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "producto repetido")
		}
		seen[it.ProductID] = true
	}
	if in.Priority == "" {
		in.Priority = "Normal"
	}

	now := time.Now()
	order := &entity.Order{
		ID:           uuid.New().String(),
		CustomerName: in.CustomerName,
		Priority:     in.Priority,
		DeliveryDate: in.DeliveryDate,
		Status:       entity.OrderProductionQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var plans []*entity.ProductionPlan

	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		year := fmt.Sprintf("ORD-%d", now.Year())
		n, err := r.Sequences.Next(ctx, year)
		if err != nil {
			return err
		}
		order.OrderNumber = fmt.Sprintf("%s-%06d", year, n)

		for _, it := range in.Items {
			product, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.NotFound("producto", it.ProductID)
			}
			order.Items = append(order.Items, entity.OrderItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				QtyOrdered:   it.Quantity,
				QtyAllocated: decimal.Zero,
				UnitPrice:    it.UnitPrice,
			})
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}

		for _, it := range order.Items {
			pn, err := r.Sequences.Next(ctx, "PP")
			if err != nil {
				return err
			}
			plan := &entity.ProductionPlan{
				ID:             uuid.New().String(),
				PlanNumber:     fmt.Sprintf("PP-%06d", pn),
				OrderID:        order.ID,
				ProductID:      it.ProductID,
				TotalQtyToMake: it.QtyOrdered,
				PlannedQty:     decimal.Zero,
				DispatchedQty:  decimal.Zero,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := r.Plans.Create(ctx, plan); err != nil {
				return err
			}
			plans = append(plans, plan)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	uc.log.Info().
		Str("order_id", order.OrderNumber).
		Int("plans", len(plans)).
		Msg("orden registrada")
	return order, plans, nil
}

// SplitInput asignación propuesta por el planificador.
type SplitInput struct {
	Mode     entity.SplitMode
	Quantity decimal.Decimal
	Routing  entity.Routing
	Cost     decimal.Decimal
}

// JobTypeFor tipo de orden de trabajo según modo y ruta.
func JobTypeFor(s SplitInput) entity.JobType {
	if s.Mode == entity.ModeFullBuy {
		return entity.JobFullBuy
	}
	if s.Routing.UsesVendor() {
		return entity.JobWork
	}
	return entity.JobInHouse
}

// ConfirmStrategy reparte la cantidad pendiente del plan en órdenes de trabajo.
// Splits con cantidad <= 0 se ignoran; si no queda ninguno el plan no cambia y no se crean órdenes.
// Sin modo o con modo desconocido es error de validación.
// El plan se bloquea y plan + órdenes se escriben en una sola transacción.
func (uc *PlanningUseCase) ConfirmStrategy(ctx context.Context, planID string, splits []SplitInput, actor entity.Actor) ([]*entity.JobCard, error) {
	valid := make([]SplitInput, 0, len(splits))
	sum := decimal.Zero
	for i, s := range splits {
		if s.Mode == "" {
			return nil, domain.Invalid(fmt.Sprintf("splits[%d].mode", i), "requerido")
		}
		if s.Mode != entity.ModeManufacturing && s.Mode != entity.ModeFullBuy {
			return nil, domain.Invalid(fmt.Sprintf("splits[%d].mode", i), "desconocido")
		}
		if !s.Quantity.IsPositive() {
			continue
		}
		if s.Mode == entity.ModeFullBuy {
			s.Routing = entity.Routing{}
		}
		valid = append(valid, s)
		sum = sum.Add(s.Quantity)
	}
	if len(valid) == 0 {
		if _, err := uc.GetPlan(ctx, planID); err != nil {
			return nil, err
		}
		return []*entity.JobCard{}, nil
	}

	var jobs []*entity.JobCard
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		plan, err := r.Plans.GetForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.NotFound("plan", planID)
		}
		if remaining := plan.Remaining(); sum.GreaterThan(remaining) {
			return domain.Invalid("splits", fmt.Sprintf("la suma %s supera lo pendiente del plan (%s)", sum, remaining))
		}
		product, err := r.Products.GetByID(ctx, plan.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto", plan.ProductID)
		}

		now := time.Now()
		for _, s := range valid {
			jobType := JobTypeFor(s)
			n, err := r.Sequences.Next(ctx, jobType.Prefix())
			if err != nil {
				return err
			}
			job := &entity.JobCard{
				ID:          uuid.New().String(),
				JobID:       fmt.Sprintf("%s-%06d", jobType.Prefix(), n),
				PlanID:      plan.ID,
				OrderID:     plan.OrderID,
				ProductID:   plan.ProductID,
				Type:        jobType,
				TotalQty:    s.Quantity,
				CurrentStep: workflow.StageMaterialPending,
				Status:      workflow.StatusPending,
				TwoStageQC:  product.RequiresAssemblyQC && jobType != entity.JobFullBuy,
				Routing:     s.Routing,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if jobType == entity.JobFullBuy {
				job.CurrentStep = workflow.StageProcurementPending
			}
			job.Append(entity.TimelineEntry{
				Stage:  entity.TimelinePlanning,
				Action: "Orden de trabajo creada",
				Detail: rationale(plan, s),
				Actor:  actor.Label(),
				At:     now,
			})
			if err := r.Jobs.Create(ctx, job); err != nil {
				return err
			}
			plan.Splits = append(plan.Splits, entity.Split{
				Mode:        s.Mode,
				Quantity:    s.Quantity,
				Routing:     s.Routing,
				Cost:        s.Cost,
				ReferenceID: job.JobID,
				ConfirmedAt: now,
				ConfirmedBy: actor.Label(),
			})
			jobs = append(jobs, job)
		}
		plan.PlannedQty = plan.PlannedQty.Add(sum)
		plan.UpdatedAt = now
		return r.Plans.Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("plan_id", planID).
		Str("planned", sum.String()).
		Int("jobs", len(jobs)).
		Msg("estrategia confirmada")
	return jobs, nil
}

func rationale(plan *entity.ProductionPlan, s SplitInput) string {
	if s.Mode == entity.ModeFullBuy {
		return fmt.Sprintf("plan %s: %s unidades por compra total", plan.PlanNumber, s.Quantity)
	}
	return fmt.Sprintf("plan %s: %s unidades fabricadas; corte %s, confección %s, empaque %s",
		plan.PlanNumber, s.Quantity, s.Routing.Cutting.Label(), s.Routing.Stitching.Label(), s.Routing.Packing.Label())
}

// DeletePlan borrado administrativo. Se rechaza si alguna orden de trabajo del plan ya salió de Pending;
// las órdenes aún pendientes se borran con el plan.
func (uc *PlanningUseCase) DeletePlan(ctx context.Context, planID string, actor entity.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		plan, err := r.Plans.GetForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.NotFound("plan", planID)
		}
		jobs, err := r.Jobs.List(ctx, repository.JobCardFilter{PlanID: planID})
		if err != nil {
			return err
		}
		for _, j := range jobs {
			if j.Status != workflow.StatusPending {
				return &domain.StaleStateError{
					Entity:   "plan",
					ID:       planID,
					Current:  fmt.Sprintf("orden %s en %s", j.JobID, j.CurrentStep),
					Expected: string(workflow.StatusPending),
				}
			}
		}
		for _, j := range jobs {
			if err := r.Jobs.Delete(ctx, j.JobID); err != nil {
				return err
			}
		}
		return r.Plans.Delete(ctx, planID)
	})
	if err != nil {
		return err
	}
	uc.log.Warn().
		Str("plan_id", planID).
		Str("admin", actor.Label()).
		Msg("plan eliminado")
	return nil
}

// ListPendingPlans planes con cantidad aún sin asignar, más antiguos primero.
func (uc *PlanningUseCase) ListPendingPlans(ctx context.Context) ([]*entity.ProductionPlan, error) {
	plans, err := uc.repos.Plans.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool { return plans[i].CreatedAt.Before(plans[j].CreatedAt) })
	return plans, nil
}

// GetPlan lectura puntual.
func (uc *PlanningUseCase) GetPlan(ctx context.Context, planID string) (*entity.ProductionPlan, error) {
	plan, err := uc.repos.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.NotFound("plan", planID)
	}
	return plan, nil
}

// GetOrder orden con sus planes.
func (uc *PlanningUseCase) GetOrder(ctx context.Context, orderNumber string) (*entity.Order, []*entity.ProductionPlan, error) {
	order, err := uc.repos.Orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, domain.NotFound("orden", orderNumber)
	}
	plans, err := uc.repos.Plans.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, plans, nil
}
