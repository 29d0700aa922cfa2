package entity

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
	"github.com/shopspring/decimal"
)

// JobType tipo de orden de trabajo según la estrategia del split.
type JobType string

const (
	JobInHouse JobType = "IN_HOUSE"
	JobWork    JobType = "JOB_WORK"
	JobFullBuy JobType = "FULL_BUY"
)

// Prefix prefijo del identificador legible de la orden.
func (t JobType) Prefix() string {
	switch t {
	case JobWork:
		return "JC-JW"
	case JobFullBuy:
		return "TR-REQ"
	}
	return "JC-IN"
}

// Decisiones de calidad.
const (
	QCVerified = "VERIFIED"
	QCHeld     = "HELD"
	QCApproved = "APPROVED"
	QCRejected = "REJECTED"
)

// Compuertas de calidad.
const (
	GateAssembly = 1
	GateFinal    = 2
)

// Acciones de la línea de tiempo que el motor de calidad reconoce.
const (
	TimelineAssemblyQC = "Assembly QC"
	TimelineFinalQC    = "Final QC"
	TimelineQCHold     = "QC Hold"
	TimelineQCReview   = "QC Review"
	TimelineKitting    = "Kitting"
	TimelinePlanning   = "Planning"
)

// IssuedMaterial línea del picking de kitting (inmutable).
type IssuedMaterial struct {
	MaterialID string          `json:"material_id"`
	LotID      string          `json:"lot_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	IssuedAt   time.Time       `json:"issued_at"`
	IssuedBy   string          `json:"issued_by"`
}

// VendorReport producción autorreportada por el maquilador.
type VendorReport struct {
	ActualQty   decimal.Decimal `json:"actual_qty"`
	WastageQty  decimal.Decimal `json:"wastage_qty"`
	ReportedBy  string          `json:"reported_by"`
	ReportedAt  time.Time       `json:"reported_at"`
	ReceivedFor string          `json:"received_for,omitempty"` // proceso en el que se recibió
}

// QCResult resultado de la última compuerta evaluada.
type QCResult struct {
	Gate        int             `json:"gate"`
	SampleSize  decimal.Decimal `json:"sample_size"`
	RejectedQty decimal.Decimal `json:"rejected_qty"`
	PassedQty   decimal.Decimal `json:"passed_qty"`
	DefectRate  float64         `json:"defect_rate"`
	Decision    string          `json:"decision"`
	Inspector   string          `json:"inspector"`
	Notes       string          `json:"notes,omitempty"`
	At          time.Time       `json:"at"`
}

// TimelineEntry evento de auditoría; solo se agrega, nunca se edita.
type TimelineEntry struct {
	Stage  string    `json:"stage"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
	Vendor string    `json:"vendor,omitempty"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

// JobCard orden de trabajo creada por cada split confirmado.
type JobCard struct {
	ID              string
	JobID           string
	PlanID          string
	OrderID         string
	ProductID       string
	Type            JobType
	TotalQty        decimal.Decimal
	CurrentStep     workflow.Stage
	Status          workflow.Status
	TwoStageQC      bool
	Routing         Routing
	VendorID        string // proveedor vinculado actualmente
	IssuedMaterials []IssuedMaterial
	VendorReport    *VendorReport
	QCResult        *QCResult
	Timeline        []TimelineEntry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AssemblyGatePassed indica si la línea de tiempo ya registra el paso de la compuerta de ensamble.
func (j *JobCard) AssemblyGatePassed() bool {
	for _, e := range j.Timeline {
		if e.Stage == TimelineAssemblyQC {
			return true
		}
	}
	return false
}

// Append agrega un evento a la línea de tiempo.
func (j *JobCard) Append(e TimelineEntry) {
	j.Timeline = append(j.Timeline, e)
}

// Move cambia la etapa y recalcula el estado agregado.
func (j *JobCard) Move(to workflow.Stage, at time.Time) {
	j.CurrentStep = to
	j.Status = workflow.StatusFor(to)
	j.UpdatedAt = at
}

// IssuedTotal total entregado de un material en kitting.
func (j *JobCard) IssuedTotal(materialID string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range j.IssuedMaterials {
		if m.MaterialID == materialID {
			total = total.Add(m.Quantity)
		}
	}
	return total
}

// Clone copia profunda.
func (j *JobCard) Clone() *JobCard {
	c := *j
	c.IssuedMaterials = append([]IssuedMaterial(nil), j.IssuedMaterials...)
	c.Timeline = append([]TimelineEntry(nil), j.Timeline...)
	if j.VendorReport != nil {
		v := *j.VendorReport
		c.VendorReport = &v
	}
	if j.QCResult != nil {
		q := *j.QCResult
		c.QCResult = &q
	}
	return &c
}
