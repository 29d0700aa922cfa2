package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
)

// ProcurementHandler compras de materia prima con QC de entrada (protegido).
type ProcurementHandler struct {
	uc  *inventory.ProcurementUseCase
	log zerolog.Logger
}

// NewProcurementHandler construye el handler.
func NewProcurementHandler(uc *inventory.ProcurementUseCase, log zerolog.Logger) *ProcurementHandler {
	return &ProcurementHandler{uc: uc, log: log}
}

// Raise godoc
// @Summary      Emitir OC de materia prima
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RaisePurchaseRequest  true  "Material, proveedor, cantidad y costo"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/procurement/purchases [post]
func (h *ProcurementHandler) Raise(c *fiber.Ctx) error {
	var in dto.RaisePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	po, err := h.uc.RaisePurchase(c.Context(), inventory.PurchaseInput{
		MaterialID: in.MaterialID,
		VendorID:   in.VendorID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
	}, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchaseOrder(po))
}

// List godoc
// @Summary      Órdenes de compra
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "ISSUED | PARTIAL | RECEIVED | QC_REVIEW | REJECTED"
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/procurement/purchases [get]
func (h *ProcurementHandler) List(c *fiber.Ctx) error {
	pos, err := h.uc.ListPurchases(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromPurchaseOrders(pos))
}

// Get godoc
// @Summary      Orden de compra con su historial de recepciones
// @Tags         procurement
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de OC"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/procurement/purchases/{number} [get]
func (h *ProcurementHandler) Get(c *fiber.Ctx) error {
	po, err := h.uc.GetPurchase(c.Context(), c.Params("number"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromPurchaseOrder(po))
}

// Receive godoc
// @Summary      Registrar recepción de una OC
// @Description  Con mode=qc la muestra con >= 20% de defectos deja la OC en QC_REVIEW sin acreditar.
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path  string                      true  "Número de OC"
// @Param        body    body  dto.ReceivePurchaseRequest  true  "Cantidad, lote y muestra"
// @Success      200     {object}  dto.PurchaseOrderResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/procurement/purchases/{number}/receipts [post]
func (h *ProcurementHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var inspect bool
	switch in.Mode {
	case "", "direct":
	case "qc":
		inspect = true
	default:
		return respondError(c, h.log, domain.Invalid("mode", "debe ser direct o qc"))
	}
	po, err := h.uc.ReceivePurchase(c.Context(), c.Params("number"), inventory.PurchaseReceipt{
		Quantity:    in.Quantity,
		LotID:       in.LotID,
		Inspect:     inspect,
		SampleSize:  in.SampleSize,
		RejectedQty: in.RejectedQty,
		Notes:       in.Notes,
	}, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromPurchaseOrder(po))
}

// Review godoc
// @Summary      Revisión administrativa de una recepción retenida
// @Tags         procurement
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path  string               true  "Número de OC"
// @Param        body    body  dto.ReviewQCRequest  true  "Aprobar o rechazar"
// @Success      200     {object}  dto.PurchaseOrderResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/procurement/purchases/{number}/review [post]
func (h *ProcurementHandler) Review(c *fiber.Ctx) error {
	var in dto.ReviewQCRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	po, err := h.uc.ReviewPurchaseQC(c.Context(), c.Params("number"), in.Approve, in.Notes, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromPurchaseOrder(po))
}
