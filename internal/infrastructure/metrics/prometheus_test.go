package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Contadores(t *testing.T) {
	m := New()

	m.KittingIssued("IN_HOUSE")
	m.KittingIssued("IN_HOUSE")
	m.KittingShortfall(3)
	m.QCDecision(1, "HELD")
	m.Dispatched(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.kittingIssued.WithLabelValues("IN_HOUSE")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.kittingShortfall))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.qcDecisions.WithLabelValues("1", "HELD")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatchedLines))
}

func TestPrometheus_Handler(t *testing.T) {
	m := New()
	m.StageAdvanced("CUTTING_STARTED")
	m.ObserveRequest("POST", "/api/jobs/:id/advance", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `produccion_api_stage_advanced_total{stage="CUTTING_STARTED"} 1`))
	assert.True(t, strings.Contains(body, "produccion_api_http_requests_total"))
}
