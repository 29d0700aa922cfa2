package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dispatch"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/jobcard"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
	"github.com/jhoicas/Produccion-api/internal/application/quality"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/Produccion-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	log := zerolog.Nop()
	m := metrics.New()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:        inventory.NewLedgerUseCase(store, repos, log),
		Replenishment: inventory.NewReplenishmentUseCase(store, repos, log),
		Procurement:   inventory.NewProcurementUseCase(store, repos, log),
		Planning:      planning.NewPlanningUseCase(store, repos, log),
		Jobs:          jobcard.NewJobCardUseCase(store, repos, m, nil, log),
		Quality:       quality.NewQualityUseCase(store, repos, m, log),
		Dispatch:      dispatch.NewDispatchUseCase(store, m, log),
		Metrics:       m,
		JWTSecret:     testJWTSecret,
		Log:           log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []json.RawMessage `json:"details"`
}

// seedJob material con 10 de existencia y una orden de trabajo que necesita 40.
func seedJob(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/inventory/materials", "bodeguero", fiber.Map{
		"material_id": "TELA", "name": "Tela dril", "unit": "m", "opening_qty": "10",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = call(t, app, http.MethodPost, "/api/inventory/products", "supervisor", fiber.Map{
		"product_id": "CAMISA", "sku": "CAM-001", "name": "Camisa",
		"bom": []fiber.Map{{"material_id": "TELA", "qty_per_unit": "2"}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = call(t, app, http.MethodPost, "/api/orders", "supervisor", fiber.Map{
		"customer_name": "Arturo Calle",
		"items":         []fiber.Map{{"product_id": "CAMISA", "quantity": "20"}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var order struct {
		Plans []struct {
			ID string `json:"id"`
		} `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(body, &order))
	require.Len(t, order.Plans, 1)

	status, body = call(t, app, http.MethodPost, "/api/plans/"+order.Plans[0].ID+"/strategy", "supervisor", fiber.Map{
		"splits": []fiber.Map{{"mode": "MANUFACTURING", "quantity": "20"}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var jobs []struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(body, &jobs))
	require.Len(t, jobs, 1)
	return jobs[0].JobID
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de mapeo de errores y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_KittingConFaltanteResponde409ConLineas(t *testing.T) {
	app := buildAPI(t)
	jobID := seedJob(t, app)

	status, body := call(t, app, http.MethodPost, "/api/jobs/"+jobID+"/kitting", "bodeguero", nil)
	require.Equal(t, http.StatusConflict, status, string(body))

	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	require.Len(t, e.Details, 1)

	var line apphttp.ShortfallDTO
	require.NoError(t, json.Unmarshal(e.Details[0], &line))
	assert.Equal(t, "TELA", line.ItemID)
	assert.Equal(t, "40", line.Required)
	assert.Equal(t, "10", line.Available)
	assert.Equal(t, "30", line.Missing)
}

func TestAPI_RolNoPermitidoEnKitting(t *testing.T) {
	app := buildAPI(t)
	jobID := seedJob(t, app)

	status, body := call(t, app, http.MethodPost, "/api/jobs/"+jobID+"/kitting", "inspector", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestAPI_AvanceObsoletoYEtapaDesconocida(t *testing.T) {
	app := buildAPI(t)
	jobID := seedJob(t, app)

	status, body := call(t, app, http.MethodPost, "/api/jobs/"+jobID+"/advance", "supervisor", fiber.Map{"stage": "CUTTING_STARTED"})
	require.Equal(t, http.StatusConflict, status, string(body))
	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "STALE_STATE", e.Code)

	status, body = call(t, app, http.MethodPost, "/api/jobs/"+jobID+"/advance", "supervisor", fiber.Map{"stage": "TERMINADO"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestAPI_RecursoInexistente404(t *testing.T) {
	app := buildAPI(t)
	status, body := call(t, app, http.MethodGet, "/api/jobs/JC-IN-999999", "inspector", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestAPI_SinTokenYMetricas(t *testing.T) {
	app := buildAPI(t)

	status, _ := call(t, app, http.MethodGet, "/api/inventory/stocks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, app, http.MethodGet, "/api/inventory/stocks", "vendor", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "produccion_api_http_requests_total")
}

func TestAPI_CatalogoDeProductos(t *testing.T) {
	app := buildAPI(t)
	seedJob(t, app)

	status, body := call(t, app, http.MethodGet, "/api/inventory/products?limit=500", "inspector", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var out struct {
		Items []struct {
			ID  string `json:"id"`
			SKU string `json:"sku"`
			BOM []struct {
				MaterialID string `json:"material_id"`
			} `json:"bom"`
		} `json:"items"`
		Page struct {
			Limit int `json:"limit"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "CAMISA", out.Items[0].ID)
	assert.Equal(t, "TELA", out.Items[0].BOM[0].MaterialID)
	assert.Equal(t, 100, out.Page.Limit, "el límite se acota a 100")
}

func TestAPI_CompraDeMaterialConQCDeEntrada(t *testing.T) {
	app := buildAPI(t)
	status, body := call(t, app, http.MethodPost, "/api/inventory/materials", "bodeguero", fiber.Map{
		"material_id": "HILO", "name": "Hilo", "unit": "cono",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = call(t, app, http.MethodPost, "/api/procurement/purchases", "bodeguero", fiber.Map{
		"material_id": "HILO", "vendor_id": "V-HILOS", "quantity": "30", "unit_cost": "500",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var po struct {
		PONumber string `json:"po_number"`
		Status   string `json:"status"`
		Pending  string `json:"pending_qty"`
	}
	require.NoError(t, json.Unmarshal(body, &po))
	assert.Equal(t, "30", po.Pending)

	path := "/api/procurement/purchases/" + po.PONumber
	status, body = call(t, app, http.MethodPost, path+"/receipts", "inspector", fiber.Map{
		"quantity": "10", "mode": "qc", "sample_size": "5", "rejected_qty": "1",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &po))
	assert.Equal(t, "QC_REVIEW", po.Status)

	status, _ = call(t, app, http.MethodPost, path+"/review", "inspector", fiber.Map{"approve": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodPost, path+"/review", "admin", fiber.Map{"approve": true, "notes": "ok"})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &po))
	assert.Equal(t, "PARTIAL", po.Status)
	assert.Equal(t, "20", po.Pending)

	status, body = call(t, app, http.MethodGet, "/api/inventory/stocks/HILO", "vendor", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"LOT-000001"`)

	status, body = call(t, app, http.MethodPost, path+"/receipts", "bodeguero", fiber.Map{"quantity": "5", "mode": "muestreo"})
	assert.Equal(t, http.StatusBadRequest, status, string(body))
}
