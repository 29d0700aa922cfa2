package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de materiales.
const (
	MovementTypeIN  = "IN"  // crédito: recepción, QC, devolución
	MovementTypeOUT = "OUT" // débito: kitting, despacho, retiro de lote SFG
)

// InventoryMovement línea del diario de movimientos por lote. Cada débito o crédito
// del libro deja una línea por lote afectado, ligada a la operación que la originó.
type InventoryMovement struct {
	ID            string
	TransactionID string // referencia de negocio: jobID, número de orden, número de OC
	ItemID        string
	Pool          StockPool
	LotID         string
	Type          string
	Quantity      decimal.Decimal // siempre positivo; el signo lo da Type
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reason        string
	Date          time.Time
	CreatedBy     string
}
