package planning_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/jobcard"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
)

var (
	admin      = entity.Actor{UserID: "u-1", Name: "Admin", Role: entity.RoleAdmin}
	supervisor = entity.Actor{UserID: "u-2", Name: "Supervisor", Role: entity.RoleSupervisor}
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	store    *memory.Store
	planning *planning.PlanningUseCase
	jobs     *jobcard.JobCardUseCase
	product  string
}

// newFixture producto con BOM de una tela y una orden de 100 unidades pendiente de estrategia.
func newFixture(t *testing.T) (*fixture, *entity.ProductionPlan) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := zerolog.Nop()
	ledger := appinventory.NewLedgerUseCase(store, store.Repos(), log)

	_, err := ledger.RegisterMaterial(ctx, appinventory.MaterialInput{
		MaterialID: "TELA", Name: "Tela dril", Unit: "m", OpeningQty: d(500),
	}, admin)
	require.NoError(t, err)
	_, err = ledger.RegisterProduct(ctx, appinventory.ProductInput{
		ProductID: "CAMISA", SKU: "CAM-001", Name: "Camisa",
		BOM: []entity.BOMLine{{MaterialID: "TELA", QtyPerUnit: d(2)}},
	})
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		planning: planning.NewPlanningUseCase(store, store.Repos(), log),
		jobs:     jobcard.NewJobCardUseCase(store, store.Repos(), nil, nil, log),
		product:  "CAMISA",
	}
	_, plans, err := f.planning.CreateOrder(ctx, planning.OrderInput{
		CustomerName: "Almacenes Éxito",
		Items:        []planning.OrderItemInput{{ProductID: "CAMISA", Quantity: d(100), UnitPrice: d(45000)}},
	})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	return f, plans[0]
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_NumeraOrdenYPlanes(t *testing.T) {
	f, plan := newFixture(t)

	assert.Equal(t, "PP-000001", plan.PlanNumber)
	assert.Equal(t, entity.PlanPendingStrategy, plan.Status())
	assert.True(t, plan.TotalQtyToMake.Equal(d(100)))

	order, plans, err := f.planning.GetOrder(context.Background(), fmt.Sprintf("ORD-%d-000001", time.Now().Year()))
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProductionQueued, order.Status)
	assert.Equal(t, "Camisa", order.Items[0].ProductName)
	require.Len(t, plans, 1)
	assert.Equal(t, plan.ID, plans[0].ID)
}

func TestCreateOrder_ProductoInexistenteNoDejaNada(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	_, _, err := f.planning.CreateOrder(ctx, planning.OrderInput{
		CustomerName: "Falabella",
		Items: []planning.OrderItemInput{
			{ProductID: "CAMISA", Quantity: d(5)},
			{ProductID: "NO-EXISTE", Quantity: d(5)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := f.planning.ListPendingPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "la transacción fallida no deja planes huérfanos")
}

func TestCreateOrder_Validaciones(t *testing.T) {
	f, _ := newFixture(t)
	ctx := context.Background()

	_, _, err := f.planning.CreateOrder(ctx, planning.OrderInput{Items: []planning.OrderItemInput{{ProductID: "CAMISA", Quantity: d(1)}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cliente requerido")

	_, _, err = f.planning.CreateOrder(ctx, planning.OrderInput{CustomerName: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, _, err = f.planning.CreateOrder(ctx, planning.OrderInput{
		CustomerName: "X",
		Items:        []planning.OrderItemInput{{ProductID: "CAMISA", Quantity: d(1)}, {ProductID: "CAMISA", Quantity: d(2)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "producto repetido")
}

// ──────────────────────────────────────────────────────────────────────────────
// ConfirmStrategy
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmStrategy_Reparto40EnPlanta60Maquila(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()

	jobs, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{
		{Mode: entity.ModeManufacturing, Quantity: d(40)},
		{Mode: entity.ModeManufacturing, Quantity: d(60), Routing: entity.Routing{
			Stitching: entity.RouteStep{VendorID: "V-TALLER", VendorName: "Taller Bello"},
		}},
	}, supervisor)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "JC-IN-000001", jobs[0].JobID)
	assert.Equal(t, entity.JobInHouse, jobs[0].Type)
	assert.Equal(t, "JC-JW-000001", jobs[1].JobID)
	assert.Equal(t, entity.JobWork, jobs[1].Type)
	for _, j := range jobs {
		assert.Equal(t, workflow.StageMaterialPending, j.CurrentStep)
		assert.Equal(t, workflow.StatusPending, j.Status)
		require.Len(t, j.Timeline, 1)
		assert.Equal(t, "Supervisor", j.Timeline[0].Actor)
	}

	got, err := f.planning.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.PlannedQty.Equal(d(100)))
	assert.Equal(t, entity.PlanScheduled, got.Status())
	require.Len(t, got.Splits, 2)
	assert.Equal(t, "JC-JW-000001", got.Splits[1].ReferenceID)

	pending, err := f.planning.ListPendingPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestConfirmStrategy_CompraTotalArrancaEnProcurement(t *testing.T) {
	f, plan := newFixture(t)

	jobs, err := f.planning.ConfirmStrategy(context.Background(), plan.ID, []planning.SplitInput{
		{Mode: entity.ModeFullBuy, Quantity: d(30), Routing: entity.Routing{Cutting: entity.RouteStep{VendorID: "ignorado"}}},
	}, supervisor)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "TR-REQ-000001", jobs[0].JobID)
	assert.Equal(t, workflow.StageProcurementPending, jobs[0].CurrentStep)
	assert.False(t, jobs[0].Routing.UsesVendor(), "la compra total no lleva ruta de taller")
}

func TestConfirmStrategy_ParcialSeAcumula(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()

	_, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(30)}}, supervisor)
	require.NoError(t, err)
	got, _ := f.planning.GetPlan(ctx, plan.ID)
	assert.Equal(t, entity.PlanPartiallyPlanned, got.Status())

	_, err = f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(71)}}, supervisor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "71 supera los 70 pendientes")

	_, err = f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(70)}}, supervisor)
	require.NoError(t, err)
	got, _ = f.planning.GetPlan(ctx, plan.ID)
	assert.Equal(t, entity.PlanScheduled, got.Status())
}

func TestConfirmStrategy_ExcesoNoCreaOrdenes(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()

	_, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{
		{Mode: entity.ModeManufacturing, Quantity: d(60)},
		{Mode: entity.ModeFullBuy, Quantity: d(60)},
	}, supervisor)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	jobs, err := f.jobs.ListJobs(ctx, repository.JobCardFilter{PlanID: plan.ID})
	require.NoError(t, err)
	assert.Empty(t, jobs)
	got, _ := f.planning.GetPlan(ctx, plan.ID)
	assert.True(t, got.PlannedQty.IsZero())
}

func TestConfirmStrategy_SplitsEnCeroSeIgnoranYModoEsObligatorio(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()

	jobs, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{
		{Mode: entity.ModeManufacturing, Quantity: d(0)},
		{Mode: entity.ModeManufacturing, Quantity: d(10)},
	}, supervisor)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	_, err = f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{{Quantity: d(10)}}, supervisor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{{Mode: "SUBCONTRATO", Quantity: d(10)}}, supervisor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)


	_, err = f.planning.ConfirmStrategy(ctx, "no-existe", []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(1)}}, supervisor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmStrategy_SoloSplitsEnCeroNoCambiaElPlan(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()

	jobs, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{
		{Mode: entity.ModeManufacturing, Quantity: d(0)},
		{Mode: entity.ModeFullBuy, Quantity: d(-3)},
	}, supervisor)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	got, err := f.planning.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.PlannedQty.IsZero())
	assert.Empty(t, got.Splits)
	assert.Equal(t, plan.Status(), got.Status())
	assert.True(t, plan.UpdatedAt.Equal(got.UpdatedAt))

	_, err = f.planning.ConfirmStrategy(ctx, "no-existe", []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(0)}}, supervisor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeletePlan
// ──────────────────────────────────────────────────────────────────────────────

func TestDeletePlan_SoloAdmin(t *testing.T) {
	f, plan := newFixture(t)
	err := f.planning.DeletePlan(context.Background(), plan.ID, supervisor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeletePlan_BorraOrdenesPendientes(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()
	_, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(50)}}, supervisor)
	require.NoError(t, err)

	require.NoError(t, f.planning.DeletePlan(ctx, plan.ID, admin))

	_, err = f.planning.GetPlan(ctx, plan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.jobs.GetJob(ctx, "JC-IN-000001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePlan_RechazaSiAlgunaOrdenArranco(t *testing.T) {
	f, plan := newFixture(t)
	ctx := context.Background()
	jobs, err := f.planning.ConfirmStrategy(ctx, plan.ID, []planning.SplitInput{
		{Mode: entity.ModeManufacturing, Quantity: d(50)},
		{Mode: entity.ModeManufacturing, Quantity: d(50)},
	}, supervisor)
	require.NoError(t, err)
	_, err = f.jobs.IssueKitting(ctx, jobs[1].JobID, nil, admin)
	require.NoError(t, err)

	err = f.planning.DeletePlan(ctx, plan.ID, admin)
	assert.ErrorIs(t, err, domain.ErrStaleState)

	_, err = f.jobs.GetJob(ctx, jobs[0].JobID)
	assert.NoError(t, err, "la orden pendiente sigue existiendo")
}
