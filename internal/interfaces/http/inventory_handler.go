package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// InventoryHandler maneja el libro de materiales: altas, movimientos, consultas y reposición (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, replenishment *inventory.ReplenishmentUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment, log: log}
}

// RegisterMaterial godoc
// @Summary      Registrar materia prima
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMaterialRequest  true  "Datos de la materia prima y existencia inicial"
// @Success      201   {object}  dto.StockDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/materials [post]
func (h *InventoryHandler) RegisterMaterial(c *fiber.Ctx) error {
	var in dto.RegisterMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.RegisterMaterial(c.Context(), inventory.MaterialInput{
		MaterialID:     in.MaterialID,
		Name:           in.Name,
		Unit:           in.Unit,
		CostPerUnit:    in.CostPerUnit,
		AvgConsumption: in.AvgConsumption,
		LeadTimeDays:   in.LeadTimeDays,
		SafetyStock:    in.SafetyStock,
		OpeningQty:     in.OpeningQty,
		OpeningLot:     in.OpeningLot,
		ReceivedAt:     time.Now(),
	}, GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStock(out))
}

// RegisterProduct godoc
// @Summary      Registrar producto con BOM
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterProductRequest  true  "Producto, BOM y parámetros de salud del pool terminado"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/products [post]
func (h *InventoryHandler) RegisterProduct(c *fiber.Ctx) error {
	var in dto.RegisterProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	bom := make([]entity.BOMLine, 0, len(in.BOM))
	for _, l := range in.BOM {
		bom = append(bom, entity.BOMLine{MaterialID: l.MaterialID, QtyPerUnit: l.QtyPerUnit})
	}
	out, err := h.ledger.RegisterProduct(c.Context(), inventory.ProductInput{
		ProductID:          in.ProductID,
		SKU:                in.SKU,
		Name:               in.Name,
		Category:           in.Category,
		RequiresAssemblyQC: in.RequiresAssemblyQC,
		BOM:                bom,
		AvgConsumption:     in.AvgConsumption,
		LeadTimeDays:       in.LeadTimeDays,
		SafetyStock:        in.SafetyStock,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProduct(out))
}

// ListProducts godoc
// @Summary      Catálogo de productos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/inventory/products [get]
func (h *InventoryHandler) ListProducts(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.ledger.ListProducts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FromProduct(p))
	}
	return c.JSON(dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  IN acredita un lote (recepción); OUT debita FIFO o del lote indicado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "item_id, pool, type, quantity, lot_id, unit_cost (entradas)"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	picks, err := h.ledger.RegisterMovementFromRequest(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "movimiento registrado", "picks": picks})
}

// ListStocks godoc
// @Summary      Listar stock por pool
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        pool  query  string  false  "RAW | FINISHED | SEMI_FINISHED (vacío = todos)"
// @Success      200   {array}  dto.StockDTO
// @Router       /api/inventory/stocks [get]
func (h *InventoryHandler) ListStocks(c *fiber.Ctx) error {
	pool := entity.StockPool(c.Query("pool"))
	if pool != "" && !pool.Valid() {
		return respondError(c, h.log, domain.Invalid("pool", "desconocido"))
	}
	list, err := h.ledger.ListStocks(c.Context(), pool)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromStocks(list))
}

// GetStock godoc
// @Summary      Stock de un item con sus lotes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID de materia prima o producto"
// @Param        pool  query  string  false  "Pool (RAW por defecto)"
// @Success      200   {object}  dto.StockDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stocks/{id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	pool := entity.StockPool(c.Query("pool", string(entity.PoolRaw)))
	if !pool.Valid() {
		return respondError(c, h.log, domain.Invalid("pool", "desconocido"))
	}
	out, err := h.ledger.GetStock(c.Context(), c.Params("id"), pool)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromStock(out))
}

// ListMovements godoc
// @Summary      Diario de movimientos de un item
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del item"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.MovementDTO
// @Router       /api/inventory/stocks/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.ledger.ListMovements(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromMovements(list))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición de materias primas
// @Description  Materias primas por debajo del punto de reorden con la cantidad sugerida de pedido,
//
//	ordenadas por salud y déficit.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// RecalculateHealth godoc
// @Summary      Recalcular salud de todo el stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.HealthReportDTO
// @Router       /api/inventory/health/recalculate [post]
func (h *InventoryHandler) RecalculateHealth(c *fiber.Ctx) error {
	out, err := h.replenishment.RecalculateHealth(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
