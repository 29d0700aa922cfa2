// recalc recalcula el punto de reorden y el estado de salud de todos los registros de stock.
// Pensado para un cron nocturno.
//
// Uso: go run ./cmd/recalc
package main

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := inventory.NewReplenishmentUseCase(postgres.NewTxRunner(pool), postgres.Repos(pool), log.Component("recalc"))
	report, err := uc.RecalculateHealth(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("recálculo de salud")
	}

	ev := log.Info().Int("evaluados", report.Evaluated).Int("cambiados", report.Changed)
	for status, n := range report.ByStatus {
		ev = ev.Int(status, n)
	}
	ev.Msg("recálculo de salud terminado")
}
