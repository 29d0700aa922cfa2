package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanStatus estado derivado de un plan de producción.
type PlanStatus string

const (
	PlanPendingStrategy  PlanStatus = "PENDING_STRATEGY"
	PlanPartiallyPlanned PlanStatus = "PARTIALLY_PLANNED"
	PlanScheduled        PlanStatus = "SCHEDULED"
)

// SplitMode estrategia de abastecimiento de un split.
type SplitMode string

const (
	ModeManufacturing SplitMode = "MANUFACTURING"
	ModeFullBuy       SplitMode = "FULL_BUY"
)

// RouteStep quién ejecuta un proceso. VendorID vacío = planta propia.
type RouteStep struct {
	VendorID   string `json:"vendor_id,omitempty"`
	VendorName string `json:"vendor_name,omitempty"`
}

// InHouse indica si el proceso se hace en planta.
func (r RouteStep) InHouse() bool { return r.VendorID == "" }

// Label nombre para la línea de tiempo.
func (r RouteStep) Label() string {
	if r.InHouse() {
		return "In-House"
	}
	if r.VendorName != "" {
		return r.VendorName
	}
	return r.VendorID
}

// Routing ruta de fabricación: corte, confección y empaque.
type Routing struct {
	Cutting   RouteStep `json:"cutting"`
	Stitching RouteStep `json:"stitching"`
	Packing   RouteStep `json:"packing"`
}

// UsesVendor indica si algún proceso va a maquila.
func (r Routing) UsesVendor() bool {
	return !r.Cutting.InHouse() || !r.Stitching.InHouse() || !r.Packing.InHouse()
}

// Step devuelve el paso de ruta para un proceso ("Cutting", "Stitching", "Packaging").
func (r Routing) Step(process string) RouteStep {
	switch process {
	case "Cutting":
		return r.Cutting
	case "Stitching":
		return r.Stitching
	case "Packaging":
		return r.Packing
	}
	return RouteStep{}
}

// Split asignación confirmada de parte de la demanda (historial append-only del plan).
type Split struct {
	Mode        SplitMode
	Quantity    decimal.Decimal
	Routing     Routing
	Cost        decimal.Decimal
	ReferenceID string // jobID generado
	ConfirmedAt time.Time
	ConfirmedBy string
}

// ProductionPlan demanda a fabricar o comprar de un producto para una orden de venta.
type ProductionPlan struct {
	ID             string
	PlanNumber     string
	OrderID        string
	ProductID      string
	TotalQtyToMake decimal.Decimal
	PlannedQty     decimal.Decimal
	DispatchedQty  decimal.Decimal
	Splits         []Split
	FulfilledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Status se deriva de PlannedQty frente a TotalQtyToMake.
func (p *ProductionPlan) Status() PlanStatus {
	switch {
	case p.PlannedQty.Equal(p.TotalQtyToMake):
		return PlanScheduled
	case p.PlannedQty.IsZero():
		return PlanPendingStrategy
	default:
		return PlanPartiallyPlanned
	}
}

// Remaining cantidad aún sin asignar.
func (p *ProductionPlan) Remaining() decimal.Decimal {
	return p.TotalQtyToMake.Sub(p.PlannedQty)
}

// Open indica si el plan aún no se da por cumplido en despacho.
func (p *ProductionPlan) Open() bool { return p.FulfilledAt == nil }

// Clone copia profunda.
func (p *ProductionPlan) Clone() *ProductionPlan {
	c := *p
	c.Splits = append([]Split(nil), p.Splits...)
	if p.FulfilledAt != nil {
		t := *p.FulfilledAt
		c.FulfilledAt = &t
	}
	return &c
}
