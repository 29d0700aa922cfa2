package dto

import (
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DispatchItemRequest línea a despachar.
type DispatchItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// DispatchRequest body para POST /api/orders/:number/dispatch. Sin items se despacha toda la orden.
type DispatchRequest struct {
	Items      []DispatchItemRequest `json:"items,omitempty"`
	VehicleNo  string                `json:"vehicle_no,omitempty"`
	TrackingID string                `json:"tracking_id,omitempty"`
	DriverName string                `json:"driver_name,omitempty"`
}

// DispatchLineResponse picking por línea.
type DispatchLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Picks     []entity.Pick   `json:"picks"`
	PlanID    string          `json:"plan_id,omitempty"`
}

// DispatchResponse orden despachada y picking FIFO por línea.
type DispatchResponse struct {
	Order OrderResponse          `json:"order"`
	Lines []DispatchLineResponse `json:"lines"`
}
