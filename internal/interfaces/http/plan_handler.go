package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// PlanHandler planes de producción y confirmación de estrategia (protegido).
type PlanHandler struct {
	uc  *planning.PlanningUseCase
	log zerolog.Logger
}

// NewPlanHandler construye el handler.
func NewPlanHandler(uc *planning.PlanningUseCase, log zerolog.Logger) *PlanHandler {
	return &PlanHandler{uc: uc, log: log}
}

// ListPending godoc
// @Summary      Planes pendientes de estrategia
// @Tags         plans
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PlanResponse
// @Router       /api/plans/pending [get]
func (h *PlanHandler) ListPending(c *fiber.Ctx) error {
	plans, err := h.uc.ListPendingPlans(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.FromPlans(plans)
	if out == nil {
		out = []dto.PlanResponse{}
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener plan
// @Tags         plans
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.PlanResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/plans/{id} [get]
func (h *PlanHandler) Get(c *fiber.Ctx) error {
	plan, err := h.uc.GetPlan(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromPlan(plan))
}

// ConfirmStrategy godoc
// @Summary      Confirmar estrategia de fabricación
// @Description  Reparte la cantidad pendiente en órdenes de trabajo (In-House, Job Work o Full Buy).
// @Tags         plans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del plan"
// @Param        body  body  dto.ConfirmStrategyRequest  true  "Splits"
// @Success      201   {array}   dto.JobResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/plans/{id}/strategy [post]
func (h *PlanHandler) ConfirmStrategy(c *fiber.Ctx) error {
	var in dto.ConfirmStrategyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	splits := make([]planning.SplitInput, 0, len(in.Splits))
	for _, s := range in.Splits {
		splits = append(splits, planning.SplitInput{
			Mode:     entity.SplitMode(s.Mode),
			Quantity: s.Quantity,
			Routing:  s.Routing.ToEntity(),
			Cost:     s.Cost,
		})
	}
	jobs, err := h.uc.ConfirmStrategy(c.Context(), c.Params("id"), splits, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromJobs(jobs))
}

// Delete godoc
// @Summary      Eliminar plan (admin)
// @Description  Solo si ninguna orden de trabajo del plan salió de Pending.
// @Tags         plans
// @Security     Bearer
// @Param        id   path  string  true  "ID del plan"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/plans/{id} [delete]
func (h *PlanHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeletePlan(c.Context(), c.Params("id"), GetActor(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
