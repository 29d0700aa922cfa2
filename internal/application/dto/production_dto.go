package dto

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de una orden de venta.
type OrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Priority     string             `json:"priority,omitempty"`
	DeliveryDate *time.Time         `json:"delivery_date,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

// RouteStepDTO proveedor de un proceso; vacío = In-House.
type RouteStepDTO struct {
	VendorID   string `json:"vendor_id,omitempty"`
	VendorName string `json:"vendor_name,omitempty"`
}

// RoutingDTO ruta por proceso.
type RoutingDTO struct {
	Cutting   RouteStepDTO `json:"cutting"`
	Stitching RouteStepDTO `json:"stitching"`
	Packing   RouteStepDTO `json:"packing"`
}

// ToEntity convierte a la entidad.
func (r RoutingDTO) ToEntity() entity.Routing {
	return entity.Routing{
		Cutting:   entity.RouteStep(r.Cutting),
		Stitching: entity.RouteStep(r.Stitching),
		Packing:   entity.RouteStep(r.Packing),
	}
}

func fromRouting(r entity.Routing) RoutingDTO {
	return RoutingDTO{
		Cutting:   RouteStepDTO(r.Cutting),
		Stitching: RouteStepDTO(r.Stitching),
		Packing:   RouteStepDTO(r.Packing),
	}
}

// SplitRequest asignación propuesta: MANUFACTURING con ruta o FULL_BUY.
type SplitRequest struct {
	Mode     string          `json:"mode"`
	Quantity decimal.Decimal `json:"quantity"`
	Routing  RoutingDTO      `json:"routing"`
	Cost     decimal.Decimal `json:"cost"`
}

// ConfirmStrategyRequest body para POST /api/plans/:id/strategy.
type ConfirmStrategyRequest struct {
	Splits []SplitRequest `json:"splits"`
}

// OrderItemResponse línea con lo asignado.
type OrderItemResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QtyOrdered   decimal.Decimal `json:"qty_ordered"`
	QtyAllocated decimal.Decimal `json:"qty_allocated"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// OrderResponse orden de venta con sus planes.
type OrderResponse struct {
	ID           string                  `json:"id"`
	OrderNumber  string                  `json:"order_number"`
	CustomerName string                  `json:"customer_name"`
	Priority     string                  `json:"priority"`
	DeliveryDate *time.Time              `json:"delivery_date,omitempty"`
	Status       string                  `json:"status"`
	Items        []OrderItemResponse     `json:"items"`
	Dispatch     *entity.DispatchDetails `json:"dispatch,omitempty"`
	Plans        []PlanResponse          `json:"plans,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

// FromOrder mapea la orden y, si vienen, sus planes.
func FromOrder(o *entity.Order, plans []*entity.ProductionPlan) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse(it))
	}
	return OrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerName: o.CustomerName,
		Priority:     o.Priority,
		DeliveryDate: o.DeliveryDate,
		Status:       o.Status,
		Items:        items,
		Dispatch:     o.Dispatch,
		Plans:        FromPlans(plans),
		CreatedAt:    o.CreatedAt,
	}
}

// SplitResponse split confirmado.
type SplitResponse struct {
	Mode        string          `json:"mode"`
	Quantity    decimal.Decimal `json:"quantity"`
	Routing     RoutingDTO      `json:"routing"`
	Cost        decimal.Decimal `json:"cost"`
	ReferenceID string          `json:"reference_id"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
	ConfirmedBy string          `json:"confirmed_by"`
}

// PlanResponse plan de producción con su estado derivado.
type PlanResponse struct {
	ID             string          `json:"id"`
	PlanNumber     string          `json:"plan_number"`
	OrderID        string          `json:"order_id"`
	ProductID      string          `json:"product_id"`
	TotalQtyToMake decimal.Decimal `json:"total_qty_to_make"`
	PlannedQty     decimal.Decimal `json:"planned_qty"`
	RemainingQty   decimal.Decimal `json:"remaining_qty"`
	DispatchedQty  decimal.Decimal `json:"dispatched_qty"`
	Status         string          `json:"status"`
	Splits         []SplitResponse `json:"splits"`
	FulfilledAt    *time.Time      `json:"fulfilled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// FromPlan mapea un plan.
func FromPlan(p *entity.ProductionPlan) PlanResponse {
	splits := make([]SplitResponse, 0, len(p.Splits))
	for _, s := range p.Splits {
		splits = append(splits, SplitResponse{
			Mode:        string(s.Mode),
			Quantity:    s.Quantity,
			Routing:     fromRouting(s.Routing),
			Cost:        s.Cost,
			ReferenceID: s.ReferenceID,
			ConfirmedAt: s.ConfirmedAt,
			ConfirmedBy: s.ConfirmedBy,
		})
	}
	return PlanResponse{
		ID:             p.ID,
		PlanNumber:     p.PlanNumber,
		OrderID:        p.OrderID,
		ProductID:      p.ProductID,
		TotalQtyToMake: p.TotalQtyToMake,
		PlannedQty:     p.PlannedQty,
		RemainingQty:   p.Remaining(),
		DispatchedQty:  p.DispatchedQty,
		Status:         string(p.Status()),
		Splits:         splits,
		FulfilledAt:    p.FulfilledAt,
		CreatedAt:      p.CreatedAt,
	}
}

// FromPlans mapea una lista de planes.
func FromPlans(list []*entity.ProductionPlan) []PlanResponse {
	if list == nil {
		return nil
	}
	out := make([]PlanResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromPlan(p))
	}
	return out
}
