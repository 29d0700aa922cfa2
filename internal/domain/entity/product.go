package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMLine línea de la lista de materiales: cuánto de una materia prima consume una unidad.
type BOMLine struct {
	MaterialID string
	QtyPerUnit decimal.Decimal
}

// Product producto fabricable o comprable. El stock vive en MaterialStock (pools FINISHED y SEMI_FINISHED).
// RequiresAssemblyQC activa la doble compuerta de calidad (ensamble + final).
type Product struct {
	ID                 string
	SKU                string
	Name               string
	Category           string
	RequiresAssemblyQC bool
	BOM                []BOMLine
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
