package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
)

func TestAllowed_ReportesDeTallerEnOrden(t *testing.T) {
	assert.True(t, workflow.Allowed(workflow.StageCuttingPending, workflow.StageCuttingStarted, workflow.TriggerStageReport))
	assert.True(t, workflow.Allowed(workflow.StageCuttingStarted, workflow.StageCuttingCompleted, workflow.TriggerStageReport))

	assert.False(t, workflow.Allowed(workflow.StageCuttingPending, workflow.StageCuttingCompleted, workflow.TriggerStageReport),
		"no se puede saltar una etapa")
	assert.False(t, workflow.Allowed(workflow.StageCuttingCompleted, workflow.StageCuttingStarted, workflow.TriggerStageReport),
		"no se puede retroceder")
}

func TestAllowed_KittingSoloDesdeMaterialPending(t *testing.T) {
	assert.True(t, workflow.Allowed(workflow.StageMaterialPending, workflow.StageCuttingPending, workflow.TriggerKitting))
	assert.False(t, workflow.Allowed(workflow.StageCuttingPending, workflow.StageCuttingPending, workflow.TriggerKitting))
	assert.Equal(t, []workflow.Stage{workflow.StageMaterialPending},
		workflow.Sources(workflow.StageCuttingPending, workflow.TriggerKitting))
}

func TestAllowed_EtapasTerminalesNoTienenSalida(t *testing.T) {
	triggers := []workflow.Trigger{
		workflow.TriggerKitting, workflow.TriggerStageReport, workflow.TriggerHandover,
		workflow.TriggerVendorDispatch, workflow.TriggerQCFinalPass, workflow.TriggerReviewReject,
	}
	for _, s := range []workflow.Stage{workflow.StageQCCompleted, workflow.StageScrapped} {
		assert.True(t, s.Terminal())
		for _, tr := range triggers {
			assert.False(t, workflow.Accepts(s, tr), "%s no acepta %s", s, tr)
		}
	}
}

func TestHandoverTarget(t *testing.T) {
	next, ok := workflow.HandoverTarget(workflow.StageCuttingCompleted, false)
	require.True(t, ok)
	assert.Equal(t, workflow.StageStitchingPending, next)

	next, ok = workflow.HandoverTarget(workflow.StageStitchingCompleted, false)
	require.True(t, ok)
	assert.Equal(t, workflow.StagePackagingPending, next)

	next, ok = workflow.HandoverTarget(workflow.StageStitchingCompleted, true)
	require.True(t, ok)
	assert.Equal(t, workflow.StageQCPending, next, "doble compuerta: pasa a QC de ensamble")

	_, ok = workflow.HandoverTarget(workflow.StageCuttingStarted, false)
	assert.False(t, ok)
}

func TestStatusFor(t *testing.T) {
	cases := map[workflow.Stage]workflow.Status{
		workflow.StageMaterialPending:    workflow.StatusPending,
		workflow.StageProcurementPending: workflow.StatusPending,
		workflow.StageCuttingStarted:     workflow.StatusInProgress,
		workflow.StagePORaised:           workflow.StatusInProgress,
		workflow.StageQCPending:          workflow.StatusQCPending,
		workflow.StageQCReviewNeeded:     workflow.StatusQCHold,
		workflow.StageQCCompleted:        workflow.StatusCompleted,
		workflow.StageScrapped:           workflow.StatusRejected,
	}
	for stage, want := range cases {
		assert.Equal(t, want, workflow.StatusFor(stage), string(stage))
	}
}

func TestParseStage(t *testing.T) {
	s, err := workflow.ParseStage("STITCHING_STARTED")
	require.NoError(t, err)
	assert.Equal(t, workflow.StageStitchingStarted, s)

	_, err = workflow.ParseStage("stitching_started")
	assert.Error(t, err)
}

func TestExpected(t *testing.T) {
	assert.Equal(t, "QC_PENDING|QC_REVIEW_NEEDED",
		workflow.Expected([]workflow.Stage{workflow.StageQCPending, workflow.StageQCReviewNeeded}))
}

func TestStatus_Closed(t *testing.T) {
	assert.True(t, workflow.StatusCompleted.Closed())
	assert.True(t, workflow.StatusRejected.Closed())
	assert.False(t, workflow.StatusInProgress.Closed())
	assert.False(t, workflow.StatusQCHold.Closed())
}
