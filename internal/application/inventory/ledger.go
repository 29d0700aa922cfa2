package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Entry referencia de negocio que acompaña a un débito o crédito en el diario.
type Entry struct {
	Reference string // jobID, número de orden, número de OC
	Reason    string
	Actor     string
	At        time.Time
}

// DebitInTx bloquea el stock (SELECT FOR UPDATE), debita FIFO o del lote indicado,
// guarda y registra una línea de diario por lote consumido. Usa los repositorios
// del caller (misma transacción): si retorna error el caller debe hacer rollback.
func DebitInTx(
	ctx context.Context,
	r repository.TxRepos,
	itemID string, pool entity.StockPool,
	qty decimal.Decimal, preferredLot string,
	e Entry,
) ([]entity.Pick, error) {
	stock, err := lockStock(ctx, r, itemID, pool)
	if err != nil {
		return nil, err
	}
	picks, err := inventory.Debit(stock, qty, preferredLot)
	if err != nil {
		return nil, err
	}
	if err := SaveWithMovements(ctx, r, stock, picks, entity.MovementTypeOUT, e); err != nil {
		return nil, err
	}
	return picks, nil
}

// CreditInTx bloquea el stock y acredita qty en lotID. Si unitCost no es nil se
// recalcula el costo promedio ponderado antes de sumar.
func CreditInTx(
	ctx context.Context,
	r repository.TxRepos,
	itemID string, pool entity.StockPool,
	qty decimal.Decimal, lotID string, unitCost *decimal.Decimal,
	e Entry,
) error {
	stock, err := lockStock(ctx, r, itemID, pool)
	if err != nil {
		return err
	}
	return CreditLocked(ctx, r, stock, qty, lotID, unitCost, e)
}

// CreditLocked acredita sobre un stock ya bloqueado por el caller.
func CreditLocked(
	ctx context.Context,
	r repository.TxRepos,
	stock *entity.MaterialStock,
	qty decimal.Decimal, lotID string, unitCost *decimal.Decimal,
	e Entry,
) error {
	if unitCost != nil {
		if unitCost.IsNegative() {
			return domain.Invalid("unit_cost", "no puede ser negativo")
		}
		inventory.ReceiptCost(stock, qty, *unitCost)
	}
	if err := inventory.Credit(stock, qty, lotID, e.At); err != nil {
		return err
	}
	picks := []entity.Pick{{ItemID: stock.ItemID, LotID: lotID, Quantity: qty}}
	return SaveWithMovements(ctx, r, stock, picks, entity.MovementTypeIN, e)
}

func lockStock(ctx context.Context, r repository.TxRepos, itemID string, pool entity.StockPool) (*entity.MaterialStock, error) {
	stock, err := r.Stocks.GetForUpdate(ctx, itemID, pool)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.NotFound("stock "+string(pool), itemID)
	}
	return stock, nil
}

// SaveWithMovements recalcula salud, persiste el stock y deja una línea de diario por pick.
func SaveWithMovements(ctx context.Context, r repository.TxRepos, stock *entity.MaterialStock, picks []entity.Pick, movType string, e Entry) error {
	inventory.ApplyHealth(stock)
	stock.UpdatedAt = e.At
	if err := r.Stocks.Save(ctx, stock); err != nil {
		return err
	}
	movs := make([]*entity.InventoryMovement, 0, len(picks))
	for _, p := range picks {
		movs = append(movs, &entity.InventoryMovement{
			TransactionID: e.Reference,
			ItemID:        stock.ItemID,
			Pool:          stock.Pool,
			LotID:         p.LotID,
			Type:          movType,
			Quantity:      p.Quantity,
			UnitCost:      stock.CostPerUnit,
			TotalCost:     p.Quantity.Mul(stock.CostPerUnit),
			Reason:        e.Reason,
			Date:          e.At,
			CreatedBy:     e.Actor,
		})
	}
	return r.Movements.Create(ctx, movs...)
}
