package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP a ReceiveMaterial (IN) o Debit (OUT).
// Devuelve los picks consumidos o el lote acreditado.
func (uc *LedgerUseCase) RegisterMovementFromRequest(ctx context.Context, actor entity.Actor, in dto.RegisterMovementRequest) ([]entity.Pick, error) {
	pool := entity.StockPool(in.Pool)
	switch in.Type {
	case entity.MovementTypeIN:
		var at time.Time
		if in.ReceivedAt != nil {
			at = *in.ReceivedAt
		}
		_, lotID, err := uc.receive(ctx, ReceiptInput{
			ItemID:     in.ItemID,
			Pool:       pool,
			Quantity:   in.Quantity,
			LotID:      in.LotID,
			UnitCost:   in.UnitCost,
			ReceivedAt: at,
			Reference:  in.Reference,
		}, actor)
		if err != nil {
			return nil, err
		}
		return []entity.Pick{{ItemID: in.ItemID, LotID: lotID, Quantity: in.Quantity}}, nil
	case entity.MovementTypeOUT:
		return uc.Debit(ctx, DebitInput{
			ItemID:       in.ItemID,
			Pool:         pool,
			Quantity:     in.Quantity,
			PreferredLot: in.LotID,
			Reference:    in.Reference,
			Reason:       in.Reason,
		}, actor)
	}
	return nil, domain.Invalid("type", "debe ser IN u OUT")
}
