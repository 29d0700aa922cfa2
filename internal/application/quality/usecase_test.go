package quality_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/jobcard"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
	"github.com/jhoicas/Produccion-api/internal/application/quality"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
)

var (
	admin     = entity.Actor{UserID: "u-1", Name: "Admin", Role: entity.RoleAdmin}
	inspector = entity.Actor{UserID: "u-5", Name: "Inspectora", Role: entity.RoleInspector}
	operario  = entity.Actor{UserID: "u-6", Name: "Operario", Role: entity.RoleSupervisor}
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	ledger  *appinventory.LedgerUseCase
	jobs    *jobcard.JobCardUseCase
	quality *quality.QualityUseCase
	job     *entity.JobCard
}

// newFixture deja una orden de 10 unidades en QC_PENDING. twoStage activa la QC de ensamble.
func newFixture(t *testing.T, twoStage bool) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := zerolog.Nop()
	f := &fixture{
		ledger:  appinventory.NewLedgerUseCase(store, store.Repos(), log),
		jobs:    jobcard.NewJobCardUseCase(store, store.Repos(), nil, nil, log),
		quality: quality.NewQualityUseCase(store, store.Repos(), nil, log),
	}
	plans := planning.NewPlanningUseCase(store, store.Repos(), log)

	_, err := f.ledger.RegisterMaterial(ctx, appinventory.MaterialInput{MaterialID: "TELA", Name: "Tela", OpeningQty: d(100)}, admin)
	require.NoError(t, err)
	_, err = f.ledger.RegisterProduct(ctx, appinventory.ProductInput{
		ProductID: "PANTALON", SKU: "PAN-001", Name: "Pantalón", RequiresAssemblyQC: twoStage,
		BOM: []entity.BOMLine{{MaterialID: "TELA", QtyPerUnit: d(1)}},
	})
	require.NoError(t, err)
	_, pp, err := plans.CreateOrder(ctx, planning.OrderInput{
		CustomerName: "Studio F", Items: []planning.OrderItemInput{{ProductID: "PANTALON", Quantity: d(10)}},
	})
	require.NoError(t, err)
	jobs, err := plans.ConfirmStrategy(ctx, pp[0].ID, []planning.SplitInput{{Mode: entity.ModeManufacturing, Quantity: d(10)}}, admin)
	require.NoError(t, err)
	f.job = jobs[0]

	_, err = f.jobs.IssueKitting(ctx, f.job.JobID, nil, admin)
	require.NoError(t, err)
	f.advance(t,
		workflow.StageCuttingStarted, workflow.StageCuttingCompleted,
		workflow.StageStitchingStarted, workflow.StageStitchingCompleted)
	if !twoStage {
		f.advance(t, workflow.StagePackagingStarted, workflow.StageQCPending)
	}
	return f
}

func (f *fixture) advance(t *testing.T, stages ...workflow.Stage) {
	t.Helper()
	for _, s := range stages {
		_, err := f.jobs.AdvanceStage(context.Background(), f.job.JobID, s, operario)
		require.NoError(t, err, "avanzar a %s", s)
	}
}

func (f *fixture) pool(t *testing.T, pool entity.StockPool) *entity.MaterialStock {
	t.Helper()
	st, err := f.ledger.GetStock(context.Background(), "PANTALON", pool)
	require.NoError(t, err)
	return st
}

// ──────────────────────────────────────────────────────────────────────────────
// Compuerta única
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmitQC_VerificadoAcreditaTerminado(t *testing.T) {
	f := newFixture(t, false)

	out, decision, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{
		SampleSize: d(10), RejectedQty: d(1),
	}, inspector)
	require.NoError(t, err)

	assert.Equal(t, entity.QCVerified, decision)
	assert.Equal(t, workflow.StageQCCompleted, out.CurrentStep)
	assert.Equal(t, workflow.StatusCompleted, out.Status)
	assert.Equal(t, entity.GateFinal, out.QCResult.Gate)
	assert.Equal(t, "Inspectora", out.QCResult.Inspector)

	fg := f.pool(t, entity.PoolFinished)
	i := fg.Lot(entity.FinishedLotID(f.job.JobID))
	require.GreaterOrEqual(t, i, 0, "el lote FG-<jobID> queda trazable")
	assert.True(t, fg.Lots[i].Quantity.Equal(d(9)))
}

func TestSubmitQC_RetencionNoAcreditaNada(t *testing.T) {
	f := newFixture(t, false)

	out, decision, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{
		SampleSize: d(10), RejectedQty: d(2), Notes: "costuras abiertas",
	}, inspector)
	require.NoError(t, err)

	assert.Equal(t, entity.QCHeld, decision)
	assert.Equal(t, workflow.StageQCReviewNeeded, out.CurrentStep)
	assert.Equal(t, workflow.StatusQCHold, out.Status)
	assert.True(t, f.pool(t, entity.PoolFinished).OnHand().IsZero())

	held, err := f.quality.ListHeld(context.Background())
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, f.job.JobID, held[0].JobID)
}

func TestSubmitQC_FueraDeQCEsEstadoObsoleto(t *testing.T) {
	f := newFixture(t, false)
	_, _, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{SampleSize: d(5)}, inspector)
	require.NoError(t, err)

	_, _, err = f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{SampleSize: d(5)}, inspector)
	assert.ErrorIs(t, err, domain.ErrStaleState, "la orden ya cerró")
}

func TestSubmitQC_MuestraInvalida(t *testing.T) {
	f := newFixture(t, false)
	_, _, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{SampleSize: d(11)}, inspector)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	pending, err := f.quality.ListPendingQC(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Revisión administrativa
// ──────────────────────────────────────────────────────────────────────────────

func TestReviewHeld_SoloAdmin(t *testing.T) {
	f := newFixture(t, false)
	_, _, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{SampleSize: d(5), RejectedQty: d(3)}, inspector)
	require.NoError(t, err)

	_, err = f.quality.ReviewHeld(context.Background(), f.job.JobID, true, "", inspector)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReviewHeld_ApruebaAcreditaLoAprobado(t *testing.T) {
	f := newFixture(t, false)
	_, _, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{SampleSize: d(5), RejectedQty: d(3)}, inspector)
	require.NoError(t, err)

	out, err := f.quality.ReviewHeld(context.Background(), f.job.JobID, true, "defecto cosmético", admin)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageQCCompleted, out.CurrentStep)
	assert.Equal(t, entity.QCApproved, out.QCResult.Decision)
	assert.True(t, f.pool(t, entity.PoolFinished).OnHand().Equal(d(7)), "10 - 3")
}

func TestReviewHeld_RechazoDesecha(t *testing.T) {
	f := newFixture(t, false)
	_, _, err := f.quality.SubmitQC(context.Background(), f.job.JobID, quality.Inspection{SampleSize: d(5), RejectedQty: d(3)}, inspector)
	require.NoError(t, err)

	out, err := f.quality.ReviewHeld(context.Background(), f.job.JobID, false, "tela equivocada", admin)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageScrapped, out.CurrentStep)
	assert.Equal(t, workflow.StatusRejected, out.Status)
	assert.Equal(t, entity.QCRejected, out.QCResult.Decision)
	assert.True(t, f.pool(t, entity.PoolFinished).OnHand().IsZero())

	_, err = f.quality.ReviewHeld(context.Background(), f.job.JobID, true, "", admin)
	assert.ErrorIs(t, err, domain.ErrStaleState)

	_, err = f.jobs.AdvanceStage(context.Background(), f.job.JobID, workflow.StagePackagingStarted, operario)
	require.ErrorIs(t, err, domain.ErrStaleState, "una orden cerrada no admite reportes")
	assert.Contains(t, err.Error(), string(workflow.StatusRejected))
}

// ──────────────────────────────────────────────────────────────────────────────
// Doble compuerta: SFG → FG
// ──────────────────────────────────────────────────────────────────────────────

func TestDobleCompuerta_TrazabilidadSFGaFG(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	sfgLot := entity.SemiFinishedLotID(f.job.JobID)
	fgLot := entity.FinishedLotID(f.job.JobID)

	out, decision, err := f.quality.SubmitQC(ctx, f.job.JobID, quality.Inspection{SampleSize: d(10), RejectedQty: d(1)}, inspector)
	require.NoError(t, err)
	assert.Equal(t, entity.QCVerified, decision)
	assert.Equal(t, entity.GateAssembly, out.QCResult.Gate)
	assert.Equal(t, workflow.StagePackagingPending, out.CurrentStep)

	sfg := f.pool(t, entity.PoolSemiFinished)
	i := sfg.Lot(sfgLot)
	require.GreaterOrEqual(t, i, 0)
	assert.True(t, sfg.Lots[i].Quantity.Equal(d(9)))
	assert.True(t, f.pool(t, entity.PoolFinished).OnHand().IsZero())

	f.advance(t, workflow.StagePackagingStarted, workflow.StageQCPending)

	out, decision, err = f.quality.SubmitQC(ctx, f.job.JobID, quality.Inspection{SampleSize: d(5), RejectedQty: d(0)}, inspector)
	require.NoError(t, err)
	assert.Equal(t, entity.QCVerified, decision)
	assert.Equal(t, entity.GateFinal, out.QCResult.Gate)
	assert.Equal(t, workflow.StageQCCompleted, out.CurrentStep)

	assert.Equal(t, -1, f.pool(t, entity.PoolSemiFinished).Lot(sfgLot), "el lote SFG se retira")
	fg := f.pool(t, entity.PoolFinished)
	require.Len(t, fg.Lots, 1)
	assert.Equal(t, fgLot, fg.Lots[0].LotID)
	assert.True(t, fg.Lots[0].Quantity.Equal(d(9)), "FG parte de las 9 SFG, no de las 10 planificadas")
	assert.True(t, out.QCResult.PassedQty.Equal(d(9)))

	movs, err := f.ledger.ListMovements(ctx, "PANTALON", 10, 0)
	require.NoError(t, err)
	var sawSFGOut, sawFGIn bool
	for _, m := range movs {
		if m.LotID == sfgLot && m.Type == entity.MovementTypeOUT {
			sawSFGOut = true
		}
		if m.LotID == fgLot && m.Type == entity.MovementTypeIN {
			sawFGIn = true
		}
		assert.Equal(t, f.job.JobID, m.TransactionID)
	}
	assert.True(t, sawSFGOut)
	assert.True(t, sawFGIn)
}

func TestDobleCompuerta_RetencionEnEnsambleYAprobacion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, decision, err := f.quality.SubmitQC(ctx, f.job.JobID, quality.Inspection{SampleSize: d(4), RejectedQty: d(1)}, inspector)
	require.NoError(t, err)
	assert.Equal(t, entity.QCHeld, decision)

	out, err := f.quality.ReviewHeld(ctx, f.job.JobID, true, "", admin)
	require.NoError(t, err)
	assert.Equal(t, workflow.StagePackagingPending, out.CurrentStep, "la aprobación respeta la compuerta guardada")
	assert.True(t, f.pool(t, entity.PoolSemiFinished).OnHand().Equal(d(9)))
}

func TestDobleCompuerta_RetencionFinalAcreditaDesdeSFG(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, _, err := f.quality.SubmitQC(ctx, f.job.JobID, quality.Inspection{SampleSize: d(10), RejectedQty: d(1)}, inspector)
	require.NoError(t, err)
	f.advance(t, workflow.StagePackagingStarted, workflow.StageQCPending)

	out, decision, err := f.quality.SubmitQC(ctx, f.job.JobID, quality.Inspection{SampleSize: d(5), RejectedQty: d(1)}, inspector)
	require.NoError(t, err)
	assert.Equal(t, entity.QCHeld, decision)
	assert.True(t, out.QCResult.PassedQty.Equal(d(8)))

	out, err = f.quality.ReviewHeld(ctx, f.job.JobID, true, "", admin)
	require.NoError(t, err)
	assert.Equal(t, workflow.StageQCCompleted, out.CurrentStep)
	assert.True(t, f.pool(t, entity.PoolFinished).OnHand().Equal(d(8)))
	assert.True(t, f.pool(t, entity.PoolSemiFinished).OnHand().IsZero())
}
