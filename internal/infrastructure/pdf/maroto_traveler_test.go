package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
)

func TestTravelerGenerator_Render(t *testing.T) {
	job := &entity.JobCard{
		JobID:       "JC-JW-000001",
		ProductID:   "P-1",
		Type:        entity.JobWork,
		TotalQty:    decimal.NewFromInt(1500),
		CurrentStep: workflow.StageCuttingPending,
		Status:      workflow.StatusPending,
		Routing:     entity.Routing{Stitching: entity.RouteStep{VendorID: "V-9", VendorName: "Confecciones Sur"}},
		IssuedMaterials: []entity.IssuedMaterial{
			{MaterialID: "M-TELA", LotID: "L1", Quantity: decimal.NewFromInt(300), IssuedBy: "bodega", IssuedAt: time.Now()},
		},
		Timeline: []entity.TimelineEntry{{Stage: entity.TimelineKitting, Action: "Material entregado", Actor: "bodega", At: time.Now()}},
	}

	out, err := NewTravelerGenerator().Render(ports.TravelerData{Job: job, Product: &entity.Product{Name: "Chaqueta", SKU: "CH-01"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe generar un PDF válido")
}

func TestTravelerGenerator_SinOrden(t *testing.T) {
	_, err := NewTravelerGenerator().Render(ports.TravelerData{})
	assert.Error(t, err)
}

func TestTravelerGenerator_qty(t *testing.T) {
	g := NewTravelerGenerator()
	assert.Equal(t, "1.234.567", g.qty(decimal.NewFromInt(1234567)))
	assert.Equal(t, "2,50", g.qty(decimal.RequireFromString("2.5")))
}
