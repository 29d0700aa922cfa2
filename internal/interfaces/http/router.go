package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dispatch"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/jobcard"
	"github.com/jhoicas/Produccion-api/internal/application/planning"
	"github.com/jhoicas/Produccion-api/internal/application/quality"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Procurement   *inventory.ProcurementUseCase
	Planning      *planning.PlanningUseCase
	Jobs          *jobcard.JobCardUseCase
	Quality       *quality.QualityUseCase
	Dispatch      *dispatch.DispatchUseCase
	Metrics       requestObserver // opcional
	JWTSecret     string
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(RequestMetrics(deps.Metrics))
		app.Get("/metrics", MetricsHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token; el rol se valida por operación.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	const (
		admin      = entity.RoleAdmin
		supervisor = entity.RoleSupervisor
		inspector  = entity.RoleInspector
		vendor     = entity.RoleVendor
		storekeep  = entity.RoleStorekeeper
	)
	anyRole := RequireRole(admin, supervisor, inspector, vendor, storekeep)

	// Libro de materiales
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment, deps.Log)
	invGroup.Post("/materials", RequireRole(admin, storekeep), inventoryHandler.RegisterMaterial)
	invGroup.Post("/products", RequireRole(admin, supervisor), inventoryHandler.RegisterProduct)
	invGroup.Get("/products", anyRole, inventoryHandler.ListProducts)
	invGroup.Post("/movements", RequireRole(admin, storekeep), inventoryHandler.RegisterMovement)
	invGroup.Get("/stocks", anyRole, inventoryHandler.ListStocks)
	invGroup.Get("/stocks/:id", anyRole, inventoryHandler.GetStock)
	invGroup.Get("/stocks/:id/movements", anyRole, inventoryHandler.ListMovements)
	invGroup.Get("/replenishment-list", RequireRole(admin, supervisor, storekeep), inventoryHandler.GetReplenishmentList)
	invGroup.Post("/health/recalculate", RequireRole(admin), inventoryHandler.RecalculateHealth)

	// Compras de materia prima con QC de entrada
	purchases := protected.Group("/procurement/purchases")
	procurementHandler := NewProcurementHandler(deps.Procurement, deps.Log)
	purchases.Post("/", RequireRole(admin, supervisor, storekeep), procurementHandler.Raise)
	purchases.Get("/", RequireRole(admin, supervisor, storekeep), procurementHandler.List)
	purchases.Get("/:number", RequireRole(admin, supervisor, storekeep), procurementHandler.Get)
	purchases.Post("/:number/receipts", RequireRole(admin, storekeep, inspector), procurementHandler.Receive)
	purchases.Post("/:number/review", RequireRole(admin), procurementHandler.Review)

	// Órdenes de venta y despacho
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Planning, deps.Ledger, deps.Dispatch, deps.Log)
	orders.Post("/", RequireRole(admin, supervisor), orderHandler.Create)
	orders.Get("/:number", anyRole, orderHandler.Get)
	orders.Post("/:number/reserve", RequireRole(admin, supervisor, storekeep), orderHandler.Reserve)
	orders.Post("/:number/dispatch", RequireRole(admin, storekeep), orderHandler.Dispatch)

	// Planes de producción
	plans := protected.Group("/plans")
	planHandler := NewPlanHandler(deps.Planning, deps.Log)
	plans.Get("/pending", RequireRole(admin, supervisor), planHandler.ListPending)
	plans.Get("/:id", anyRole, planHandler.Get)
	plans.Post("/:id/strategy", RequireRole(admin, supervisor), planHandler.ConfirmStrategy)
	plans.Delete("/:id", RequireRole(admin), planHandler.Delete)

	// Órdenes de trabajo
	jobs := protected.Group("/jobs")
	jobHandler := NewJobHandler(deps.Jobs, deps.Log)
	jobs.Get("/", anyRole, jobHandler.List)
	jobs.Get("/:id", anyRole, jobHandler.Get)
	jobs.Get("/:id/timeline", anyRole, jobHandler.Timeline)
	jobs.Get("/:id/traveler", anyRole, jobHandler.Traveler)
	jobs.Post("/:id/kitting", RequireRole(admin, storekeep), jobHandler.IssueKitting)
	jobs.Post("/:id/advance", RequireRole(admin, supervisor, vendor), jobHandler.Advance)
	jobs.Post("/:id/vendor-receipt", RequireRole(admin, supervisor, storekeep), jobHandler.ReceiveFromVendor)
	jobs.Post("/:id/purchase-order", RequireRole(admin, supervisor), jobHandler.RaisePO)
	jobs.Post("/:id/goods-receipt", RequireRole(admin, storekeep), jobHandler.ReceiveGoods)

	// Calidad
	qc := protected.Group("/qc")
	qualityHandler := NewQualityHandler(deps.Quality, deps.Log)
	qc.Get("/pending", RequireRole(admin, inspector), qualityHandler.ListPending)
	qc.Get("/held", RequireRole(admin, inspector), qualityHandler.ListHeld)
	qc.Post("/:id/inspection", RequireRole(admin, inspector), qualityHandler.Submit)
	qc.Post("/:id/review", RequireRole(admin), qualityHandler.Review)
}
