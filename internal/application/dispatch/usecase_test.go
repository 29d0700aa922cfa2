package dispatch_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dispatch"
	appinventory "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
)

var bodeguero = entity.Actor{UserID: "u-3", Name: "Bodega", Role: entity.RoleStorekeeper}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	ledger   *appinventory.LedgerUseCase
	planning *planning.PlanningUseCase
	dispatch *dispatch.DispatchUseCase
	order    *entity.Order
	plans    []*entity.ProductionPlan
}

// newFixture orden con CAMISA x10 y GORRA x5. Terminado: CAMISA 12 (dos lotes), GORRA 2.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := zerolog.Nop()
	f := &fixture{
		ledger:   appinventory.NewLedgerUseCase(store, store.Repos(), log),
		planning: planning.NewPlanningUseCase(store, store.Repos(), log),
		dispatch: dispatch.NewDispatchUseCase(store, nil, log),
	}
	for _, p := range []struct{ id, sku string }{{"CAMISA", "CAM-1"}, {"GORRA", "GOR-1"}} {
		_, err := f.ledger.RegisterProduct(ctx, appinventory.ProductInput{ProductID: p.id, SKU: p.sku, Name: p.id})
		require.NoError(t, err)
	}
	receive := func(item, lot string, qty int64) {
		_, err := f.ledger.ReceiveMaterial(ctx, appinventory.ReceiptInput{
			ItemID: item, Pool: entity.PoolFinished, Quantity: d(qty), LotID: lot,
		}, bodeguero)
		require.NoError(t, err)
	}
	receive("CAMISA", "FG-JC-IN-000001", 7)
	receive("CAMISA", "FG-JC-IN-000002", 5)
	receive("GORRA", "FG-TR-REQ-000001", 2)

	var err error
	f.order, f.plans, err = f.planning.CreateOrder(ctx, planning.OrderInput{
		CustomerName: "Koaj",
		Items: []planning.OrderItemInput{
			{ProductID: "CAMISA", Quantity: d(10)},
			{ProductID: "GORRA", Quantity: d(5)},
		},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) finished(t *testing.T, item string) *entity.MaterialStock {
	t.Helper()
	st, err := f.ledger.GetStock(context.Background(), item, entity.PoolFinished)
	require.NoError(t, err)
	return st
}

func TestDispatch_FaltanteEnumeraTodoYNoCambiaNada(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatch.Dispatch(context.Background(), f.order.OrderNumber, nil, dispatch.Transport{}, bodeguero)
	var short *domain.InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Len(t, short.Shortfalls, 1)
	assert.Equal(t, "GORRA", short.Shortfalls[0].ItemID)

	assert.True(t, f.finished(t, "CAMISA").OnHand().Equal(d(12)), "la línea con stock tampoco se debita")

	order, _, err := f.planning.GetOrder(context.Background(), f.order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderProductionQueued, order.Status)
	assert.Nil(t, order.Dispatch)
}

func TestDispatch_LineasExplicitasConcilianElPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.dispatch.Dispatch(ctx, f.order.OrderNumber, []dispatch.Item{
		{ProductID: "CAMISA", Quantity: d(10)},
	}, dispatch.Transport{VehicleNo: "ABC-123", DriverName: "Jorge"}, bodeguero)
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	require.Len(t, line.Picks, 2)
	assert.Equal(t, "FG-JC-IN-000001", line.Picks[0].LotID, "FIFO sobre lotes FG")
	assert.True(t, line.Picks[1].Quantity.Equal(d(3)))

	assert.Equal(t, entity.OrderDispatched, res.Order.Status)
	require.NotNil(t, res.Order.Dispatch)
	assert.Equal(t, "ABC-123", res.Order.Dispatch.VehicleNo)
	assert.NotEmpty(t, res.Order.Dispatch.Reference)
	assert.True(t, f.finished(t, "CAMISA").OnHand().Equal(d(2)))

	plan, err := f.planning.GetPlan(ctx, line.PlanID)
	require.NoError(t, err)
	assert.True(t, plan.DispatchedQty.Equal(d(10)))
	assert.NotNil(t, plan.FulfilledAt, "planeado + despachado cubre el total")

	_, err = f.dispatch.Dispatch(ctx, f.order.OrderNumber, nil, dispatch.Transport{}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrStaleState, "una orden se despacha una sola vez")
}

func TestDispatch_SinLineasUsaLoReservado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ledger.Reserve(ctx, f.order.OrderNumber, "CAMISA", d(4)))
	require.NoError(t, f.ledger.Reserve(ctx, f.order.OrderNumber, "GORRA", d(2)))

	res, err := f.dispatch.Dispatch(ctx, f.order.OrderNumber, nil, dispatch.Transport{}, bodeguero)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "CAMISA", res.Lines[0].ProductID)
	assert.True(t, res.Lines[0].Quantity.Equal(d(4)))
	assert.True(t, res.Lines[1].Quantity.Equal(d(2)))

	camisa := f.finished(t, "CAMISA")
	assert.True(t, camisa.Reserved.IsZero(), "la reserva se consume con el despacho")
	assert.True(t, camisa.OnHand().Equal(d(8)))
	for _, it := range res.Order.Items {
		assert.True(t, it.QtyAllocated.IsZero())
	}

	plan, err := f.planning.GetPlan(ctx, res.Lines[0].PlanID)
	require.NoError(t, err)
	assert.True(t, plan.DispatchedQty.Equal(d(4)))
	assert.Nil(t, plan.FulfilledAt, "4 de 10 no cumple el plan")
}

func TestDispatch_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dispatch.Dispatch(ctx, f.order.OrderNumber, []dispatch.Item{{ProductID: "BOLSO", Quantity: d(1)}}, dispatch.Transport{}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.dispatch.Dispatch(ctx, f.order.OrderNumber, []dispatch.Item{{ProductID: "CAMISA", Quantity: d(0)}}, dispatch.Transport{}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.dispatch.Dispatch(ctx, f.order.OrderNumber, []dispatch.Item{
		{ProductID: "CAMISA", Quantity: d(1)}, {ProductID: "CAMISA", Quantity: d(1)},
	}, dispatch.Transport{}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.dispatch.Dispatch(ctx, "ORD-1999-000001", nil, dispatch.Transport{}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispatch_NoLiberaReservasDeOtraOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ledger.Reserve(ctx, f.order.OrderNumber, "CAMISA", d(5)))

	otra, _, err := f.planning.CreateOrder(ctx, planning.OrderInput{
		CustomerName: "Tennis",
		Items:        []planning.OrderItemInput{{ProductID: "CAMISA", Quantity: d(5)}},
	})
	require.NoError(t, err)

	res, err := f.dispatch.Dispatch(ctx, otra.OrderNumber, nil, dispatch.Transport{}, bodeguero)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Quantity.Equal(d(5)), "sin reserva se despacha lo pedido")

	camisa := f.finished(t, "CAMISA")
	assert.True(t, camisa.OnHand().Equal(d(7)))
	assert.True(t, camisa.Reserved.Equal(d(5)), "la reserva de la primera orden sigue en el pool")
	assert.True(t, camisa.Available().Equal(d(2)))

	order, _, err := f.planning.GetOrder(ctx, f.order.OrderNumber)
	require.NoError(t, err)
	it := order.Items[order.Item("CAMISA")]
	assert.True(t, it.QtyAllocated.Equal(camisa.Reserved), "lo asignado a la orden coincide con lo reservado en el pool")
}
