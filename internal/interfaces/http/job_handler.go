package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/jobcard"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/domain/workflow"
)

// JobHandler órdenes de trabajo: kitting, avance de etapa, proveedores y trading (protegido).
type JobHandler struct {
	uc  *jobcard.JobCardUseCase
	log zerolog.Logger
}

// NewJobHandler construye el handler.
func NewJobHandler(uc *jobcard.JobCardUseCase, log zerolog.Logger) *JobHandler {
	return &JobHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar órdenes de trabajo
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        step     query  string  false  "Etapa actual"
// @Param        type     query  string  false  "IN_HOUSE | JOB_WORK | FULL_BUY"
// @Param        status   query  string  false  "Estado"
// @Param        plan_id  query  string  false  "Plan"
// @Success      200  {array}  dto.JobResponse
// @Router       /api/jobs [get]
func (h *JobHandler) List(c *fiber.Ctx) error {
	f := repository.JobCardFilter{
		Type:   entity.JobType(c.Query("type")),
		Status: workflow.Status(c.Query("status")),
		PlanID: c.Query("plan_id"),
	}
	if s := c.Query("step"); s != "" {
		st, err := workflow.ParseStage(s)
		if err != nil {
			return respondError(c, h.log, domain.Invalid("step", err.Error()))
		}
		f.Step = st
	}
	jobs, err := h.uc.ListJobs(c.Context(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJobs(jobs))
}

// Get godoc
// @Summary      Obtener orden de trabajo
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Job ID (JC-IN-000001)"
// @Success      200  {object}  dto.JobResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) Get(c *fiber.Ctx) error {
	job, err := h.uc.GetJob(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJob(job))
}

// Timeline godoc
// @Summary      Línea de tiempo de auditoría
// @Tags         jobs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Job ID"
// @Success      200  {array}  entity.TimelineEntry
// @Router       /api/jobs/{id}/timeline [get]
func (h *JobHandler) Timeline(c *fiber.Ctx) error {
	tl, err := h.uc.Timeline(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	if tl == nil {
		tl = []entity.TimelineEntry{}
	}
	return c.JSON(tl)
}

// Traveler godoc
// @Summary      Hoja de ruta en PDF
// @Tags         jobs
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "Job ID"
// @Success      200  {file}  binary
// @Router       /api/jobs/{id}/traveler [get]
func (h *JobHandler) Traveler(c *fiber.Ctx) error {
	jobID := c.Params("id")
	pdf, err := h.uc.TravelerPDF(c.Context(), jobID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+jobID+`.pdf"`)
	return c.Send(pdf)
}

// IssueKitting godoc
// @Summary      Entregar material (kitting)
// @Description  Debita del stock RAW todo el BOM de la orden o nada; 409 con la lista de faltantes.
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "Job ID"
// @Param        body  body  dto.IssueKittingRequest  false  "Lotes preferidos por material"
// @Success      200   {object}  dto.JobResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/kitting [post]
func (h *JobHandler) IssueKitting(c *fiber.Ctx) error {
	var in dto.IssueKittingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	job, err := h.uc.IssueKitting(c.Context(), c.Params("id"), in.PreferredLots, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJob(job))
}

// Advance godoc
// @Summary      Reportar avance de etapa
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Job ID"
// @Param        body  body  dto.AdvanceStageRequest  true  "Etapa reportada"
// @Success      200   {object}  dto.JobResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/advance [post]
func (h *JobHandler) Advance(c *fiber.Ctx) error {
	var in dto.AdvanceStageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	stage, err := workflow.ParseStage(in.Stage)
	if err != nil {
		return respondError(c, h.log, domain.Invalid("stage", err.Error()))
	}
	job, err := h.uc.AdvanceStage(c.Context(), c.Params("id"), stage, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJob(job))
}

// ReceiveFromVendor godoc
// @Summary      Recibir material de proveedor (Job Work)
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Job ID"
// @Param        body  body  dto.VendorReceiptRequest  true  "Cantidad real y merma"
// @Success      200   {object}  dto.JobResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/vendor-receipt [post]
func (h *JobHandler) ReceiveFromVendor(c *fiber.Ctx) error {
	var in dto.VendorReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	job, err := h.uc.ReceiveFromVendor(c.Context(), c.Params("id"), in.ActualQty, in.WastageQty, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJob(job))
}

// RaisePO godoc
// @Summary      Emitir OC de trading (Full Buy)
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Job ID"
// @Param        body  body  dto.RaisePORequest  true  "Proveedor y costo unitario"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/purchase-order [post]
func (h *JobHandler) RaisePO(c *fiber.Ctx) error {
	var in dto.RaisePORequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	po, err := h.uc.RaiseTradingPO(c.Context(), c.Params("id"), in.VendorID, in.UnitCost, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchaseOrder(po))
}

// ReceiveGoods godoc
// @Summary      Recibir mercancía de trading
// @Tags         jobs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "Job ID"
// @Param        body  body  dto.ReceiveGoodsRequest  true  "Cantidad recibida"
// @Success      200   {object}  dto.JobResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/jobs/{id}/goods-receipt [post]
func (h *JobHandler) ReceiveGoods(c *fiber.Ctx) error {
	var in dto.ReceiveGoodsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	job, err := h.uc.ReceiveTradingGoods(c.Context(), c.Params("id"), in.Quantity, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJob(job))
}
