package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase recálculo de salud bajo demanda y lista de reposición de materia prima.
type ReplenishmentUseCase struct {
	txRunner ports.TxRunner
	repos    repository.TxRepos
	log      zerolog.Logger
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(txRunner ports.TxRunner, repos repository.TxRepos, log zerolog.Logger) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{txRunner: txRunner, repos: repos, log: log}
}

// RecalculateHealth pasada por lotes sobre todos los registros: punto de reorden y estado de salud.
// Bloquea todos los registros en orden de item; no toca lotes ni reservas.
func (uc *ReplenishmentUseCase) RecalculateHealth(ctx context.Context) (dto.HealthReportDTO, error) {
	report := dto.HealthReportDTO{ByStatus: map[string]int{}}
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		stocks, err := r.Stocks.ListForUpdate(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		for _, s := range stocks {
			before, beforeAt := s.Health, s.StockAtLeast
			h := inventory.ApplyHealth(s)
			report.Evaluated++
			report.ByStatus[h.Status]++
			if before == s.Health && beforeAt.Equal(s.StockAtLeast) {
				continue
			}
			report.Changed++
			s.UpdatedAt = now
			if err := r.Stocks.Save(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dto.HealthReportDTO{}, err
	}
	uc.log.Info().
		Int("evaluated", report.Evaluated).
		Int("changed", report.Changed).
		Msg("salud de inventario recalculada")
	return report, nil
}

// GenerateReplenishmentList materias primas bajo su punto de reorden con la cantidad sugerida.
// Prioridad: primero peor salud, luego mayor déficit absoluto.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	stocks, err := uc.repos.Stocks.List(ctx, entity.PoolRaw)
	if err != nil {
		return nil, err
	}
	ideal := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, s := range stocks {
		h := inventory.EvaluateHealth(s)
		onHand := s.OnHand()
		if !onHand.LessThan(h.StockAtLeast) {
			continue
		}
		idealStock := h.StockAtLeast.Mul(ideal)
		suggested := idealStock.Sub(onHand)
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			MaterialID:         s.ItemID,
			Name:               s.Name,
			Health:             h.Status,
			CurrentStock:       onHand,
			ReorderPoint:       h.StockAtLeast,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggested,
			UnitCost:           s.CostPerUnit,
			EstimatedOrderCost: suggested.Mul(s.CostPerUnit),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if ra, rb := healthRank(a.Health), healthRank(b.Health); ra != rb {
			return ra < rb
		}
		defA := a.ReorderPoint.Sub(a.CurrentStock)
		defB := b.ReorderPoint.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.MaterialID < b.MaterialID
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func healthRank(status string) int {
	switch status {
	case entity.HealthCritical:
		return 0
	case entity.HealthMedium:
		return 1
	case entity.HealthOptimal:
		return 2
	}
	return 3
}
