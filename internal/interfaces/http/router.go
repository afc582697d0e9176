package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/purchasing"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orders         *orders.CreateOrderUseCase
	PurchaseOrders *purchasing.PurchaseOrderUseCase
	Receive        *purchasing.ReceivePurchaseOrderUseCase
	AdjustStock    *inventory.AdjustStockUseCase
	Ledger         *inventory.LedgerUseCase
	Logger         *logger.Logger
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; el tenant sale del token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(jwt.RoleOwner, jwt.RoleManager)

	// Orders
	orderHandler := NewOrderHandler(deps.Orders, log)
	ordersGroup := api.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)

	// Purchase orders (alta y recepción solo OWNER/MANAGER)
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrders, deps.Receive, log)
	poGroup := api.Group("/purchase-orders")
	poGroup.Post("/", managers, poHandler.Create)
	poGroup.Get("/", poHandler.List)
	poGroup.Get("/:id", poHandler.GetByID)
	poGroup.Patch("/:id/receive", managers, poHandler.Receive)

	// Inventory
	invHandler := NewInventoryHandler(deps.AdjustStock, deps.Ledger, log)
	invGroup := api.Group("/inventory")
	invGroup.Post("/adjustments", managers, invHandler.Adjust)
	invGroup.Get("/movements", invHandler.ListMovements)
	invGroup.Get("/reconcile", invHandler.Reconcile)
}
