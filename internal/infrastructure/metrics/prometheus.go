// Package metrics expone contadores Prometheus del flujo de producción y de la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Produccion-api/internal/application/ports"
)

const (
	namespace = "produccion"
	subsystem = "api"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementa ports.Metrics sobre un registry propio (no el global).
type Prometheus struct {
	registry *prometheus.Registry

	kittingIssued    *prometheus.CounterVec
	kittingShortfall prometheus.Counter
	stageAdvanced    *prometheus.CounterVec
	qcDecisions      *prometheus.CounterVec
	dispatchedLines  prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registra los colectores del proceso y los de negocio.
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	m := &Prometheus{
		registry: reg,
		kittingIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "kitting_issued_total",
			Help: "Entregas de material (kitting) completadas por tipo de orden",
		}, []string{"job_type"}),
		kittingShortfall: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "kitting_shortfall_materials_total",
			Help: "Materiales faltantes reportados en intentos de kitting rechazados",
		}),
		stageAdvanced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "stage_advanced_total",
			Help: "Transiciones de etapa aplicadas por etapa destino",
		}, []string{"stage"}),
		qcDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "qc_decisions_total",
			Help: "Decisiones de calidad por compuerta y resultado",
		}, []string{"gate", "decision"}),
		dispatchedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "dispatched_lines_total",
			Help: "Líneas de despacho confirmadas",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "http_requests_total",
			Help: "Peticiones HTTP por método, ruta y código",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.kittingIssued, m.kittingShortfall, m.stageAdvanced, m.qcDecisions, m.dispatchedLines,
		m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Prometheus) KittingIssued(jobType string) { m.kittingIssued.WithLabelValues(jobType).Inc() }

func (m *Prometheus) KittingShortfall(materials int) { m.kittingShortfall.Add(float64(materials)) }

func (m *Prometheus) StageAdvanced(stage string) { m.stageAdvanced.WithLabelValues(stage).Inc() }

func (m *Prometheus) QCDecision(gate int, decision string) {
	m.qcDecisions.WithLabelValues(strconv.Itoa(gate), decision).Inc()
}

func (m *Prometheus) Dispatched(lines int) { m.dispatchedLines.Add(float64(lines)) }

// ObserveRequest registra una petición HTTP ya respondida.
func (m *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler endpoint de scraping.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry acceso para tests.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }
