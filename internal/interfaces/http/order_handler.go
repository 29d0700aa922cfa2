package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dispatch"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
)

// OrderHandler órdenes de venta: alta, consulta, reserva y despacho (protegido).
type OrderHandler struct {
	planning *planning.PlanningUseCase
	ledger   *inventory.LedgerUseCase
	dispatch *dispatch.DispatchUseCase
	log      zerolog.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(p *planning.PlanningUseCase, l *inventory.LedgerUseCase, d *dispatch.DispatchUseCase, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{planning: p, ledger: l, dispatch: d, log: log}
}

// Create godoc
// @Summary      Crear orden de venta
// @Description  Registra la orden y un plan de producción por línea.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente, prioridad, fecha de entrega y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]planning.OrderItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, planning.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	order, plans, err := h.planning.CreateOrder(c.Context(), planning.OrderInput{
		CustomerName: in.CustomerName,
		Priority:     in.Priority,
		DeliveryDate: in.DeliveryDate,
		Items:        items,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(order, plans))
}

// Get godoc
// @Summary      Obtener orden de venta con sus planes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número de orden (ORD-2026-000001)"
// @Success      200     {object}  dto.OrderResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/orders/{number} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, plans, err := h.planning.GetOrder(c.Context(), c.Params("number"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOrder(order, plans))
}

// Reserve godoc
// @Summary      Reservar stock terminado para una línea
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path  string               true  "Número de orden"
// @Param        body    body  dto.ReserveRequest   true  "Producto y cantidad"
// @Success      200     {object}  dto.OrderResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{number}/reserve [post]
func (h *OrderHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	number := c.Params("number")
	if err := h.ledger.Reserve(c.Context(), number, in.ProductID, in.Quantity); err != nil {
		return respondError(c, h.log, err)
	}
	order, plans, err := h.planning.GetOrder(c.Context(), number)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromOrder(order, plans))
}

// Dispatch godoc
// @Summary      Despachar orden de venta
// @Description  Debita FIFO el stock terminado, concilia planes y marca la orden como despachada.
//
//	Ante cualquier faltante devuelve 409 con todas las líneas cortas y no cambia nada.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        number  path  string               true  "Número de orden"
// @Param        body    body  dto.DispatchRequest  false "Líneas (vacío = toda la orden) y transporte"
// @Success      200     {object}  dto.DispatchResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{number}/dispatch [post]
func (h *OrderHandler) Dispatch(c *fiber.Ctx) error {
	var in dto.DispatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	items := make([]dispatch.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, dispatch.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.dispatch.Dispatch(c.Context(), c.Params("number"), items, dispatch.Transport{
		VehicleNo:  in.VehicleNo,
		TrackingID: in.TrackingID,
		DriverName: in.DriverName,
	}, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	lines := make([]dto.DispatchLineResponse, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, dto.DispatchLineResponse{ProductID: l.ProductID, Quantity: l.Quantity, Picks: l.Picks, PlanID: l.PlanID})
	}
	return c.JSON(dto.DispatchResponse{Order: dto.FromOrder(res.Order, nil), Lines: lines})
}
