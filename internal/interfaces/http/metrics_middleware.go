package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// requestObserver lo implementa *metrics.Prometheus.
type requestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
	Handler() http.Handler
}

// RequestMetrics registra método, ruta (patrón, no path crudo) y código de cada petición.
func RequestMetrics(obs requestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		obs.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

// MetricsHandler expone el endpoint de scraping de Prometheus en Fiber.
func MetricsHandler(obs requestObserver) fiber.Handler {
	return adaptor.HTTPHandler(obs.Handler())
}
