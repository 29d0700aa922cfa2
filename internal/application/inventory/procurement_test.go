package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

var (
	adminCompras = entity.Actor{UserID: "u-1", Name: "Admin", Role: entity.RoleAdmin}
	inspectora   = entity.Actor{UserID: "u-5", Name: "Inspectora", Role: entity.RoleInspector}
)

type comprasFixture struct {
	ledger *appinventory.LedgerUseCase
	uc     *appinventory.ProcurementUseCase
	po     *entity.PurchaseOrder
}

// newCompras TELA sin stock, costo 1000, y una OC por 100 a 2000.
func newCompras(t *testing.T) *comprasFixture {
	t.Helper()
	store, ledger := newLedger(t)
	ctx := context.Background()
	_, err := ledger.RegisterMaterial(ctx, appinventory.MaterialInput{
		MaterialID: "TELA", Name: "Tela", CostPerUnit: d(1000), LeadTimeDays: 3,
	}, bodeguero)
	require.NoError(t, err)
	uc := appinventory.NewProcurementUseCase(store, store.Repos(), zerolog.Nop())
	po, err := uc.RaisePurchase(ctx, appinventory.PurchaseInput{
		MaterialID: "TELA", VendorID: "V-TEXTIL", Quantity: d(100), UnitCost: d(2000),
	}, bodeguero)
	require.NoError(t, err)
	return &comprasFixture{ledger: ledger, uc: uc, po: po}
}

func (f *comprasFixture) stock(t *testing.T) *entity.MaterialStock {
	t.Helper()
	st, err := f.ledger.GetStock(context.Background(), "TELA", entity.PoolRaw)
	require.NoError(t, err)
	return st
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión
// ──────────────────────────────────────────────────────────────────────────────

func TestRaisePurchase_NoTocaStock(t *testing.T) {
	f := newCompras(t)

	assert.Equal(t, "PO-RM-000001", f.po.PONumber)
	assert.Equal(t, entity.POItemMaterial, f.po.ItemType)
	assert.Equal(t, entity.POStatusIssued, f.po.Status)
	assert.True(t, f.po.Pending().Equal(d(100)))
	assert.Equal(t, 3*24.0, f.po.ExpectedAt.Sub(f.po.CreatedAt).Hours(), "usa el lead time del material")
	assert.True(t, f.stock(t).OnHand().IsZero())

	_, err := f.uc.RaisePurchase(context.Background(), appinventory.PurchaseInput{
		MaterialID: "NADA", VendorID: "V", Quantity: d(1),
	}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.RaisePurchase(context.Background(), appinventory.PurchaseInput{
		MaterialID: "TELA", VendorID: "V", Quantity: d(0),
	}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceivePurchase_ParcialConQCAcreditaSoloLoBueno(t *testing.T) {
	f := newCompras(t)
	ctx := context.Background()

	po, err := f.uc.ReceivePurchase(ctx, f.po.PONumber, appinventory.PurchaseReceipt{
		Quantity: d(40), LotID: "T-0425", Inspect: true, SampleSize: d(10), RejectedQty: d(1),
	}, inspectora)
	require.NoError(t, err)

	assert.Equal(t, entity.POStatusPartial, po.Status)
	assert.True(t, po.ReceivedQty.Equal(d(40)))
	assert.True(t, po.Pending().Equal(d(60)))
	require.Len(t, po.Receipts, 1)
	assert.Equal(t, entity.ReceiptPassed, po.Receipts[0].Result)
	assert.InDelta(t, 10.0, po.Receipts[0].DefectRate, 0.0001)

	st := f.stock(t)
	i := st.Lot("T-0425")
	require.GreaterOrEqual(t, i, 0)
	assert.True(t, st.Lots[i].Quantity.Equal(d(39)), "40 recibidas - 1 rechazada")
	assert.True(t, st.CostPerUnit.Equal(d(2000)), "sin stock previo el costo es el de la OC")

	movs, err := f.ledger.ListMovements(ctx, "TELA", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, f.po.PONumber, movs[0].TransactionID)
	assert.Equal(t, entity.MovementTypeIN, movs[0].Type)

	po, err = f.uc.ReceivePurchase(ctx, f.po.PONumber, appinventory.PurchaseReceipt{Quantity: d(60)}, bodeguero)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, po.Status)
	assert.Equal(t, "LOT-000001", po.Receipts[1].LotID, "sin lote se numera por secuencia")
	assert.True(t, f.stock(t).OnHand().Equal(d(99)))

	_, err = f.uc.ReceivePurchase(ctx, f.po.PONumber, appinventory.PurchaseReceipt{Quantity: d(1)}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrStaleState, "la OC ya se recibió completa")
}

func TestReceivePurchase_NoSuperaLoPendiente(t *testing.T) {
	f := newCompras(t)
	_, err := f.uc.ReceivePurchase(context.Background(), f.po.PONumber, appinventory.PurchaseReceipt{Quantity: d(101)}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.ReceivePurchase(context.Background(), f.po.PONumber, appinventory.PurchaseReceipt{
		Quantity: d(10), SampleSize: d(5),
	}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "muestra sin modo QC")

	_, err = f.uc.ReceivePurchase(context.Background(), "PO-RM-999999", appinventory.PurchaseReceipt{Quantity: d(1)}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceivePurchase_VeintePorCientoRetieneSinAcreditar(t *testing.T) {
	f := newCompras(t)

	po, err := f.uc.ReceivePurchase(context.Background(), f.po.PONumber, appinventory.PurchaseReceipt{
		Quantity: d(50), Inspect: true, SampleSize: d(10), RejectedQty: d(2),
	}, inspectora)
	require.NoError(t, err)

	assert.Equal(t, entity.POStatusQCReview, po.Status)
	assert.Equal(t, entity.ReceiptHeld, po.LastReceipt().Result)
	assert.True(t, po.ReceivedQty.IsZero(), "lo retenido no cuenta como recibido")
	assert.True(t, f.stock(t).OnHand().IsZero())

	held, err := f.uc.ListPurchases(context.Background(), entity.POStatusQCReview)
	require.NoError(t, err)
	require.Len(t, held, 1)

	_, err = f.uc.ReceivePurchase(context.Background(), f.po.PONumber, appinventory.PurchaseReceipt{Quantity: d(1)}, bodeguero)
	assert.ErrorIs(t, err, domain.ErrStaleState, "en revisión no admite más recepciones")
}

// ──────────────────────────────────────────────────────────────────────────────
// Revisión administrativa
// ──────────────────────────────────────────────────────────────────────────────

func TestReviewPurchaseQC_AprobacionForzadaAcreditaLoBueno(t *testing.T) {
	f := newCompras(t)
	ctx := context.Background()
	_, err := f.uc.ReceivePurchase(ctx, f.po.PONumber, appinventory.PurchaseReceipt{
		Quantity: d(50), LotID: "T-HOLD", Inspect: true, SampleSize: d(10), RejectedQty: d(3),
	}, inspectora)
	require.NoError(t, err)

	_, err = f.uc.ReviewPurchaseQC(ctx, f.po.PONumber, true, "", inspectora)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	po, err := f.uc.ReviewPurchaseQC(ctx, f.po.PONumber, true, "defecto de tono aceptable", adminCompras)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPartial, po.Status)
	assert.True(t, po.ReceivedQty.Equal(d(50)))
	assert.Equal(t, entity.ReceiptApproved, po.LastReceipt().Result)
	assert.Equal(t, "Admin", po.LastReceipt().Actor)

	st := f.stock(t)
	i := st.Lot("T-HOLD")
	require.GreaterOrEqual(t, i, 0)
	assert.True(t, st.Lots[i].Quantity.Equal(d(47)))

	_, err = f.uc.ReviewPurchaseQC(ctx, f.po.PONumber, true, "", adminCompras)
	assert.ErrorIs(t, err, domain.ErrStaleState, "la recepción ya se revisó")
}

func TestReviewPurchaseQC_RechazoCierraSinAcreditar(t *testing.T) {
	f := newCompras(t)
	ctx := context.Background()
	_, err := f.uc.ReceivePurchase(ctx, f.po.PONumber, appinventory.PurchaseReceipt{
		Quantity: d(50), Inspect: true, SampleSize: d(5), RejectedQty: d(4),
	}, inspectora)
	require.NoError(t, err)

	po, err := f.uc.ReviewPurchaseQC(ctx, f.po.PONumber, false, "rollo manchado", adminCompras)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusRejected, po.Status)
	assert.Equal(t, entity.ReceiptRejected, po.LastReceipt().Result)
	assert.Equal(t, "rollo manchado", po.LastReceipt().Notes)
	assert.True(t, f.stock(t).OnHand().IsZero())

	movs, err := f.ledger.ListMovements(ctx, "TELA", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestListPurchases_EstadoDesconocido(t *testing.T) {
	f := newCompras(t)
	all, err := f.uc.ListPurchases(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.uc.ListPurchases(context.Background(), "ABIERTA")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
