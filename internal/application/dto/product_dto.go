package dto

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ProductResponse salida de un producto con su BOM.
type ProductResponse struct {
	ID                 string       `json:"id"`
	SKU                string       `json:"sku"`
	Name               string       `json:"name"`
	Category           string       `json:"category,omitempty"`
	RequiresAssemblyQC bool         `json:"requires_assembly_qc"`
	BOM                []BOMLineDTO `json:"bom"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// FromProduct mapea la entidad.
func FromProduct(p *entity.Product) ProductResponse {
	bom := make([]BOMLineDTO, 0, len(p.BOM))
	for _, l := range p.BOM {
		bom = append(bom, BOMLineDTO{MaterialID: l.MaterialID, QtyPerUnit: l.QtyPerUnit})
	}
	return ProductResponse{
		ID:                 p.ID,
		SKU:                p.SKU,
		Name:               p.Name,
		Category:           p.Category,
		RequiresAssemblyQC: p.RequiresAssemblyQC,
		BOM:                bom,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
