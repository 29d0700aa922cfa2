// Package dispatch despacha órdenes de venta: debita producto terminado y concilia el
// contador de despacho del plan de producción de origen.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DispatchUseCase despacho de órdenes de venta.
type DispatchUseCase struct {
	txRunner ports.TxRunner
	metrics  ports.Metrics
	log      zerolog.Logger
}

// NewDispatchUseCase construye el caso de uso.
func NewDispatchUseCase(txRunner ports.TxRunner, metrics ports.Metrics, log zerolog.Logger) *DispatchUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &DispatchUseCase{txRunner: txRunner, metrics: metrics, log: log}
}

// Item línea a despachar.
type Item struct {
	ProductID string
	Quantity  decimal.Decimal
}

// Transport datos de transporte.
type Transport struct {
	VehicleNo  string
	TrackingID string
	DriverName string
}

// Line resultado por línea despachada.
type Line struct {
	ProductID string
	Quantity  decimal.Decimal
	Picks     []entity.Pick
	PlanID    string // plan conciliado, vacío si no había plan abierto
}

// Result resultado del despacho.
type Result struct {
	Order *entity.Order
	Lines []Line
}

// Dispatch despacha la orden. Sin items se despachan todas las líneas (lo asignado si hay
// reserva, si no lo pedido). Todas las líneas, la orden y los planes se escriben en una sola
// transacción; ante cualquier faltante se informan todos los productos cortos y nada cambia.
func (uc *DispatchUseCase) Dispatch(ctx context.Context, orderNumber string, items []Item, transport Transport, actor entity.Actor) (*Result, error) {
	var res *Result
	err := uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		order, err := r.Orders.GetForUpdate(ctx, orderNumber)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("orden", orderNumber)
		}
		if order.Status == entity.OrderDispatched {
			return &domain.StaleStateError{Entity: "orden", ID: orderNumber, Current: order.Status}
		}
		lines, err := resolveLines(order, items)
		if err != nil {
			return err
		}

		// Fase 1: bloquear en orden de producto y planificar.
		stocks := make([]*entity.MaterialStock, len(lines))
		var shortfalls []domain.Shortfall
		for i := range lines {
			st, err := r.Stocks.GetForUpdate(ctx, lines[i].ProductID, entity.PoolFinished)
			if err != nil {
				return err
			}
			if st == nil {
				return domain.NotFound("stock "+string(entity.PoolFinished), lines[i].ProductID)
			}
			picks, short := inventory.PlanDebit(st, lines[i].Quantity, "")
			if short != nil {
				shortfalls = append(shortfalls, *short)
				continue
			}
			stocks[i], lines[i].Picks = st, picks
		}
		if len(shortfalls) > 0 {
			return &domain.InsufficientStockError{Shortfalls: shortfalls}
		}

		// Fase 2: aplicar y conciliar.
		now := time.Now()
		entry := appinventory.Entry{Reference: order.OrderNumber, Reason: "despacho", Actor: actor.Label(), At: now}
		for i := range lines {
			st, qty := stocks[i], lines[i].Quantity
			it := &order.Items[order.Item(lines[i].ProductID)]
			// solo se libera la reserva de esta orden; las de otras órdenes quedan intactas
			rel := decimal.Min(it.QtyAllocated, qty, st.Reserved)
			st.Reserved = st.Reserved.Sub(rel)
			it.QtyAllocated = it.QtyAllocated.Sub(rel)
			inventory.ApplyDebit(st, lines[i].Picks)
			if err := appinventory.SaveWithMovements(ctx, r, st, lines[i].Picks, entity.MovementTypeOUT, entry); err != nil {
				return err
			}

			plan, err := r.Plans.FindOpenForUpdate(ctx, order.ID, lines[i].ProductID)
			if err != nil {
				return err
			}
			if plan == nil {
				continue
			}
			plan.DispatchedQty = plan.DispatchedQty.Add(qty)
			if !plan.PlannedQty.Add(plan.DispatchedQty).LessThan(plan.TotalQtyToMake) {
				plan.FulfilledAt = &now
			}
			plan.UpdatedAt = now
			if err := r.Plans.Update(ctx, plan); err != nil {
				return err
			}
			lines[i].PlanID = plan.ID
		}

		order.Status = entity.OrderDispatched
		order.Dispatch = &entity.DispatchDetails{
			Reference:    uuid.New().String(),
			VehicleNo:    transport.VehicleNo,
			TrackingID:   transport.TrackingID,
			DriverName:   transport.DriverName,
			DispatchedAt: now,
			DispatchedBy: actor.Label(),
		}
		order.UpdatedAt = now
		if err := r.Orders.Update(ctx, order); err != nil {
			return err
		}
		res = &Result{Order: order, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.Dispatched(len(res.Lines))
	uc.log.Info().
		Str("order_id", orderNumber).
		Int("lines", len(res.Lines)).
		Str("reference", res.Order.Dispatch.Reference).
		Msg("orden despachada")
	return res, nil
}

// resolveLines valida las líneas pedidas contra la orden y las ordena por producto.
func resolveLines(order *entity.Order, items []Item) ([]Line, error) {
	var lines []Line
	if len(items) == 0 {
		for _, it := range order.Items {
			qty := it.QtyOrdered
			if it.QtyAllocated.IsPositive() {
				qty = it.QtyAllocated
			}
			lines = append(lines, Line{ProductID: it.ProductID, Quantity: qty})
		}
	} else {
		seen := make(map[string]bool, len(items))
		for i, it := range items {
			if order.Item(it.ProductID) < 0 {
				return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "no pertenece a la orden")
			}
			if !it.Quantity.IsPositive() {
				return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
			}
			if seen[it.ProductID] {
				return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "producto repetido")
			}
			seen[it.ProductID] = true
			lines = append(lines, Line{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}
	if len(lines) == 0 {
		return nil, domain.Invalid("items", "nada que despachar")
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}
