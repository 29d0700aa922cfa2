package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/quality"
)

// QualityHandler inspección y revisión de calidad (protegido).
type QualityHandler struct {
	uc  *quality.QualityUseCase
	log zerolog.Logger
}

// NewQualityHandler construye el handler.
func NewQualityHandler(uc *quality.QualityUseCase, log zerolog.Logger) *QualityHandler {
	return &QualityHandler{uc: uc, log: log}
}

// ListPending godoc
// @Summary      Órdenes esperando inspección
// @Tags         qc
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.JobResponse
// @Router       /api/qc/pending [get]
func (h *QualityHandler) ListPending(c *fiber.Ctx) error {
	jobs, err := h.uc.ListPendingQC(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJobs(jobs))
}

// ListHeld godoc
// @Summary      Órdenes retenidas en revisión
// @Tags         qc
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.JobResponse
// @Router       /api/qc/held [get]
func (h *QualityHandler) ListHeld(c *fiber.Ctx) error {
	jobs, err := h.uc.ListHeld(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJobs(jobs))
}

// Submit godoc
// @Summary      Registrar inspección de calidad
// @Description  Tasa de defectos >= 20% retiene la orden para revisión; por debajo acredita stock.
// @Tags         qc
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Job ID"
// @Param        body  body  dto.SubmitQCRequest  true  "Muestra y rechazos"
// @Success      200   {object}  dto.QCDecisionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/qc/{id}/inspection [post]
func (h *QualityHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitQCRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	job, decision, err := h.uc.SubmitQC(c.Context(), c.Params("id"), quality.Inspection{
		SampleSize:  in.SampleSize,
		RejectedQty: in.RejectedQty,
		Notes:       in.Notes,
	}, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.QCDecisionResponse{Decision: decision, Job: dto.FromJob(job)})
}

// Review godoc
// @Summary      Revisión administrativa de una orden retenida
// @Tags         qc
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Job ID"
// @Param        body  body  dto.ReviewQCRequest  true  "Aprobar o rechazar"
// @Success      200   {object}  dto.JobResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/qc/{id}/review [post]
func (h *QualityHandler) Review(c *fiber.Ctx) error {
	var in dto.ReviewQCRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	job, err := h.uc.ReviewHeld(c.Context(), c.Params("id"), in.Approve, in.Notes, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromJob(job))
}
