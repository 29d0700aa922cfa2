package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de venta.
const (
	OrderPending          = "PENDING"
	OrderProductionQueued = "PRODUCTION_QUEUED"
	OrderReadyDispatch    = "READY_DISPATCH"
	OrderDispatched       = "DISPATCHED"
)

// OrderItem línea de la orden de venta.
type OrderItem struct {
	ProductID    string
	ProductName  string
	QtyOrdered   decimal.Decimal
	QtyAllocated decimal.Decimal // reservado desde stock terminado
	UnitPrice    decimal.Decimal
}

// DispatchDetails datos de transporte estampados al despachar.
type DispatchDetails struct {
	Reference    string    `json:"reference"`
	VehicleNo    string    `json:"vehicle_no,omitempty"`
	TrackingID   string    `json:"tracking_id,omitempty"`
	DriverName   string    `json:"driver_name,omitempty"`
	DispatchedAt time.Time `json:"dispatched_at"`
	DispatchedBy string    `json:"dispatched_by"`
}

// Order orden de venta; origen de los planes de producción.
type Order struct {
	ID           string
	OrderNumber  string
	CustomerName string
	Priority     string
	DeliveryDate *time.Time
	Status       string
	Items        []OrderItem
	Dispatch     *DispatchDetails
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item devuelve el índice de la línea del producto, o -1.
func (o *Order) Item(productID string) int {
	for i, it := range o.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone copia profunda.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.Dispatch != nil {
		d := *o.Dispatch
		c.Dispatch = &d
	}
	if o.DeliveryDate != nil {
		t := *o.DeliveryDate
		c.DeliveryDate = &t
	}
	return &c
}
