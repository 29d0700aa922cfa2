package dto

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RegisterMaterialRequest body para POST /api/inventory/materials.
type RegisterMaterialRequest struct {
	MaterialID     string          `json:"material_id,omitempty"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	CostPerUnit    decimal.Decimal `json:"cost_per_unit"`
	AvgConsumption decimal.Decimal `json:"avg_consumption"`
	LeadTimeDays   int             `json:"lead_time_days"`
	SafetyStock    decimal.Decimal `json:"safety_stock"`
	OpeningQty     decimal.Decimal `json:"opening_qty"`
	OpeningLot     string          `json:"opening_lot,omitempty"`
}

// BOMLineDTO línea de lista de materiales.
type BOMLineDTO struct {
	MaterialID string          `json:"material_id"`
	QtyPerUnit decimal.Decimal `json:"qty_per_unit"`
}

// RegisterProductRequest body para POST /api/inventory/products.
type RegisterProductRequest struct {
	ProductID          string          `json:"product_id,omitempty"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Category           string          `json:"category,omitempty"`
	RequiresAssemblyQC bool            `json:"requires_assembly_qc"`
	BOM                []BOMLineDTO    `json:"bom"`
	AvgConsumption     decimal.Decimal `json:"avg_consumption"`
	LeadTimeDays       int             `json:"lead_time_days"`
	SafetyStock        decimal.Decimal `json:"safety_stock"`
}

// RegisterMovementRequest body para POST /api/inventory/movements (IN acredita, OUT debita).
type RegisterMovementRequest struct {
	ItemID     string           `json:"item_id"`
	Pool       string           `json:"pool,omitempty"`
	Type       string           `json:"type"`
	Quantity   decimal.Decimal  `json:"quantity"`
	LotID      string           `json:"lot_id,omitempty"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
	Reference  string           `json:"reference,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// ReserveRequest body para POST /api/orders/:number/reserve.
type ReserveRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LotDTO lote en respuestas.
type LotDTO struct {
	LotID      string          `json:"lot_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	ReceivedAt time.Time       `json:"received_at"`
}

// StockDTO snapshot de un registro del libro.
type StockDTO struct {
	ItemID       string          `json:"item_id"`
	Pool         string          `json:"pool"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit,omitempty"`
	OnHand       decimal.Decimal `json:"on_hand"`
	Reserved     decimal.Decimal `json:"reserved"`
	Available    decimal.Decimal `json:"available"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	SafetyStock  decimal.Decimal `json:"safety_stock"`
	StockAtLeast decimal.Decimal `json:"stock_at_least"`
	Health       string          `json:"health"`
	Lots         []LotDTO        `json:"lots"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// FromStock mapea el registro; los lotes salen en orden FIFO.
func FromStock(s *entity.MaterialStock) StockDTO {
	lots := make([]LotDTO, 0, len(s.Lots))
	for _, i := range s.FIFO() {
		l := s.Lots[i]
		lots = append(lots, LotDTO{LotID: l.LotID, Quantity: l.Quantity, ReceivedAt: l.ReceivedAt})
	}
	return StockDTO{
		ItemID:       s.ItemID,
		Pool:         string(s.Pool),
		Name:         s.Name,
		Unit:         s.Unit,
		OnHand:       s.OnHand(),
		Reserved:     s.Reserved,
		Available:    s.Available(),
		CostPerUnit:  s.CostPerUnit,
		SafetyStock:  s.SafetyStock,
		StockAtLeast: s.StockAtLeast,
		Health:       s.Health,
		Lots:         lots,
		UpdatedAt:    s.UpdatedAt,
	}
}

// FromStocks mapea una lista.
func FromStocks(list []*entity.MaterialStock) []StockDTO {
	out := make([]StockDTO, 0, len(list))
	for _, s := range list {
		out = append(out, FromStock(s))
	}
	return out
}

// MovementDTO línea del diario.
type MovementDTO struct {
	TransactionID string          `json:"transaction_id"`
	ItemID        string          `json:"item_id"`
	Pool          string          `json:"pool"`
	LotID         string          `json:"lot_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Reason        string          `json:"reason,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// FromMovements mapea el diario.
func FromMovements(list []*entity.InventoryMovement) []MovementDTO {
	out := make([]MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MovementDTO{
			TransactionID: m.TransactionID,
			ItemID:        m.ItemID,
			Pool:          string(m.Pool),
			LotID:         m.LotID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			TotalCost:     m.TotalCost,
			Reason:        m.Reason,
			Date:          m.Date,
			CreatedBy:     m.CreatedBy,
		})
	}
	return out
}

// ReplenishmentSuggestionDTO sugerencia de compra para una materia prima bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	MaterialID         string          `json:"material_id"`
	Name               string          `json:"name"`
	Health             string          `json:"health"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`         // ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// HealthReportDTO resultado del recálculo de salud.
type HealthReportDTO struct {
	Evaluated int            `json:"evaluated"`
	Changed   int            `json:"changed"`
	ByStatus  map[string]int `json:"by_status"`
}
