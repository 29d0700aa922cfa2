// Package inventory contiene la lógica pura del libro de materiales: débito FIFO o
// por lote específico, crédito por lote, costo promedio y salud del stock.
// Nada aquí toca persistencia; los casos de uso aplican el resultado dentro de una transacción.
package inventory

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PlanDebit calcula el picking de un débito sin mutar el stock.
// Con preferredLot solo se consume ese lote; sin él se aplica FIFO partiendo el último lote.
// Si no alcanza devuelve el faltante y ningún pick.
func PlanDebit(stock *entity.MaterialStock, qty decimal.Decimal, preferredLot string) ([]entity.Pick, *domain.Shortfall) {
	if preferredLot != "" {
		i := stock.Lot(preferredLot)
		available := decimal.Zero
		if i >= 0 {
			available = stock.Lots[i].Quantity
		}
		if available.LessThan(qty) {
			return nil, &domain.Shortfall{
				ItemID:    stock.ItemID,
				Name:      stock.Name,
				LotID:     preferredLot,
				Required:  qty,
				Available: available,
			}
		}
		return []entity.Pick{{ItemID: stock.ItemID, LotID: preferredLot, Quantity: qty}}, nil
	}

	onHand := stock.OnHand()
	if onHand.LessThan(qty) {
		return nil, &domain.Shortfall{
			ItemID:    stock.ItemID,
			Name:      stock.Name,
			Required:  qty,
			Available: onHand,
		}
	}

	var picks []entity.Pick
	remaining := qty
	for _, i := range stock.FIFO() {
		if !remaining.IsPositive() {
			break
		}
		lot := stock.Lots[i]
		if !lot.Quantity.IsPositive() {
			continue
		}
		take := decimal.Min(lot.Quantity, remaining)
		picks = append(picks, entity.Pick{ItemID: stock.ItemID, LotID: lot.LotID, Quantity: take})
		remaining = remaining.Sub(take)
	}
	return picks, nil
}

// ApplyDebit descuenta los picks de sus lotes y poda los lotes en cero.
// Los picks deben venir de PlanDebit sobre el mismo stock.
func ApplyDebit(stock *entity.MaterialStock, picks []entity.Pick) {
	for _, p := range picks {
		if i := stock.Lot(p.LotID); i >= 0 {
			stock.Lots[i].Quantity = stock.Lots[i].Quantity.Sub(p.Quantity)
		}
	}
	prune(stock)
	clampReserved(stock)
}

// Debit planifica y aplica. Ante faltante devuelve InsufficientStockError y no toca el stock.
func Debit(stock *entity.MaterialStock, qty decimal.Decimal, preferredLot string) ([]entity.Pick, error) {
	if !qty.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	picks, short := PlanDebit(stock, qty, preferredLot)
	if short != nil {
		return nil, &domain.InsufficientStockError{Shortfalls: []domain.Shortfall{*short}}
	}
	ApplyDebit(stock, picks)
	return picks, nil
}

// Credit suma al lote indicado (mismo lotID se fusiona) o agrega un lote nuevo.
func Credit(stock *entity.MaterialStock, qty decimal.Decimal, lotID string, at time.Time) error {
	if !qty.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if lotID == "" {
		return domain.Invalid("lot_id", "requerido")
	}
	if i := stock.Lot(lotID); i >= 0 {
		stock.Lots[i].Quantity = stock.Lots[i].Quantity.Add(qty)
		return nil
	}
	stock.Lots = append(stock.Lots, entity.Lot{LotID: lotID, Quantity: qty, ReceivedAt: at})
	return nil
}

// RemoveLot retira completo un lote etiquetado y devuelve la cantidad retirada.
func RemoveLot(stock *entity.MaterialStock, lotID string) (decimal.Decimal, bool) {
	i := stock.Lot(lotID)
	if i < 0 {
		return decimal.Zero, false
	}
	qty := stock.Lots[i].Quantity
	stock.Lots = append(stock.Lots[:i], stock.Lots[i+1:]...)
	clampReserved(stock)
	return qty, true
}

func prune(stock *entity.MaterialStock) {
	kept := stock.Lots[:0]
	for _, l := range stock.Lots {
		if l.Quantity.IsPositive() {
			kept = append(kept, l)
		}
	}
	stock.Lots = kept
}

// reserved nunca supera la existencia física.
func clampReserved(stock *entity.MaterialStock) {
	if onHand := stock.OnHand(); stock.Reserved.GreaterThan(onHand) {
		stock.Reserved = onHand
	}
	if stock.Reserved.IsNegative() {
		stock.Reserved = decimal.Zero
	}
}
