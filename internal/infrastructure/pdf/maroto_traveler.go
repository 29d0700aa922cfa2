// Package pdf genera la hoja de ruta (traveler) impresa de una orden de trabajo:
// acompaña al material en planta y con proveedores.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Job ID + tipo        │  Etapa actual + estado       │
//	│  PRODUCTO: nombre + SKU + cantidad total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RUTA: Corte | Costura | Empaque (In-House o proveedor)      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PICKING: Material | Lote | Cantidad | Entregado por         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TIMELINE: Fecha | Etapa | Acción | Actor                    │
//	│  FOOTER: QR con el Job ID para escaneo en planta             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.TravelerRenderer = (*TravelerGenerator)(nil)

// TravelerGenerator implementa ports.TravelerRenderer usando Maroto v2.
type TravelerGenerator struct {
	printer *message.Printer
}

// NewTravelerGenerator construye el generador. Las cantidades se formatean en es-CO.
func NewTravelerGenerator() *TravelerGenerator {
	return &TravelerGenerator{printer: message.NewPrinter(language.MustParse("es-CO"))}
}

// Render genera el PDF y devuelve sus bytes.
func (g *TravelerGenerator) Render(data ports.TravelerData) ([]byte, error) {
	job := data.Job
	if job == nil {
		return nil, fmt.Errorf("pdf: orden de trabajo vacía")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de ruta "+job.JobID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(job))
	m.AddRows(g.productRow(job, data.Product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(routingRow(job.Routing))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow("MATERIAL ENTREGADO (PICKING)"))
	m.AddRows(tableHeaderRow([]header{
		{"Material", 4, align.Left}, {"Lote", 3, align.Left}, {"Cantidad", 2, align.Right}, {"Entregado por", 3, align.Left},
	}))
	if len(job.IssuedMaterials) == 0 {
		m.AddRows(emptyRow("Sin material entregado"))
	}
	for _, im := range job.IssuedMaterials {
		m.AddRows(row.New(6).Add(
			cell(im.MaterialID, 4, align.Left),
			cell(im.LotID, 3, align.Left),
			cell(g.qty(im.Quantity), 2, align.Right),
			cell(im.IssuedBy, 3, align.Left),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(sectionRow("LÍNEA DE TIEMPO"))
	m.AddRows(tableHeaderRow([]header{
		{"Fecha", 3, align.Left}, {"Etapa", 2, align.Left}, {"Acción", 5, align.Left}, {"Actor", 2, align.Left},
	}))
	for _, e := range job.Timeline {
		m.AddRows(row.New(6).Add(
			cell(e.At.Format("02/01/2006 15:04"), 3, align.Left),
			cell(e.Stage, 2, align.Left),
			cell(e.Action, 5, align.Left),
			cell(e.Actor, 2, align.Left),
		))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(job.JobID))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(job *entity.JobCard) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(job.JobID, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1}),
			text.New("Tipo: "+string(job.Type), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(string(job.CurrentStep), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1}),
			text.New("Estado: "+string(job.Status), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func (g *TravelerGenerator) productRow(job *entity.JobCard, product *entity.Product) core.Row {
	name, sku := job.ProductID, "-"
	if product != nil {
		name, sku = product.Name, product.SKU
	}
	qc := "QC final"
	if job.TwoStageQC {
		qc = "QC de ensamble + QC final"
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 1}),
			text.New(fmt.Sprintf("SKU: %s   |   Cantidad: %s   |   %s", sku, g.qty(job.TotalQty), qc),
				props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func routingRow(r entity.Routing) core.Row {
	step := func(label string, s entity.RouteStep) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(s.Label(), props.Text{Size: 9, Top: 6}),
		)
	}
	return row.New(13).Add(
		step(workflow.ProcessCutting, r.Cutting),
		step(workflow.ProcessStitching, r.Stitching),
		step(workflow.ProcessPackaging, r.Packing),
	)
}

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

type header struct {
	label string
	size  int
	align align.Type
}

// tableHeaderRow cabecera con fondo de color primario.
func tableHeaderRow(cols []header) core.Row {
	r := row.New(7)
	for _, h := range cols {
		r.Add(col.New(h.size).Add(text.New(h.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: h.align, Color: colorWhite, Top: 1.5, Left: 1, Right: 1,
		})))
	}
	return r.WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))
}

func footerRow(jobID string) core.Row {
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(jobID, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Escanee el código para reportar avance\nde esta orden en planta.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Este documento debe acompañar al material\nhasta el cierre de la orden.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 18, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// qty formatea con separadores de miles del locale (1.234,5).
func (g *TravelerGenerator) qty(d decimal.Decimal) string {
	f, _ := d.Float64()
	if d.Equal(d.Truncate(0)) {
		return g.printer.Sprintf("%d", d.IntPart())
	}
	return g.printer.Sprintf("%.2f", f)
}
