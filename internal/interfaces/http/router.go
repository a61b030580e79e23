package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/branch-ledger/internal/application/catalog"
	"github.com/jhoicas/branch-ledger/internal/application/checkout"
	"github.com/jhoicas/branch-ledger/internal/application/credit"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/application/retry"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/branch-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC       *catalog.ProductUseCase
	LedgerUC        *inventory.LedgerUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	RiskUC          *credit.RiskUseCase
	CheckoutUC      *checkout.CheckoutUseCase
	Retry           retry.Policy
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
	JWTSecret       string
	ServiceName     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	app.Use(RequestLogger(deps.Logger), MetricsMiddleware(deps.Metrics))

	// Público
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	productHandler := NewProductHandler(deps.CatalogUC)
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.ReplenishmentUC, deps.Retry, deps.Metrics)
	creditHandler := NewCreditHandler(deps.RiskUC, deps.Retry, deps.Metrics)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutUC, deps.Metrics)

	// Unidades de medida
	uoms := protected.Group("/uoms")
	uoms.Get("/", productHandler.ListUoms)
	uoms.Post("/", productHandler.CreateUom)

	// Productos y sus unidades
	products := protected.Group("/products")
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/uoms", productHandler.ListUnits)
	products.Post("/:id/uoms", productHandler.AddUnit)
	products.Put("/:id/uoms/:uomId/factor", productHandler.UpdateFactor)
	products.Get("/:id/default-uom/:purpose", productHandler.GetDefaultUnit)
	products.Put("/:id/default-uom/:purpose", productHandler.SetDefaultUnit)

	// Libro de inventario
	inv := protected.Group("/inventory")
	inv.Post("/transactions", inventoryHandler.PostTransaction)
	inv.Get("/transactions/:id", inventoryHandler.GetTransaction)
	inv.Post("/recipes/consume", inventoryHandler.ConsumeRecipe)

	// Lecturas por sucursal
	branches := protected.Group("/branches/:branchId")
	branches.Get("/products", productHandler.ListByBranch)
	branches.Get("/products/barcode/:barcode", productHandler.FindByBarcode)
	branches.Get("/transactions", inventoryHandler.ListTransactions)
	branches.Get("/stock", inventoryHandler.ListStock)
	branches.Get("/stock/:productId", inventoryHandler.GetStock)
	branches.Get("/replenishment", inventoryHandler.GetReplenishmentList)
	branches.Get("/credit/customers", creditHandler.ListCustomers)

	// Crédito
	cr := protected.Group("/credit")
	cr.Post("/customers", creditHandler.CreateCustomer)
	cr.Get("/customers/:id", creditHandler.GetCustomer)
	cr.Put("/customers/:id", creditHandler.UpdateCustomer)
	cr.Post("/customers/:id/evaluate", creditHandler.Evaluate)
	cr.Get("/customers/:id/notes", creditHandler.OpenNotes)
	cr.Post("/notes", creditHandler.CreateNote)
	cr.Get("/notes/:id/payments", creditHandler.ListPayments)
	cr.Post("/payments", creditHandler.ApplyPayments)

	// Punto de venta
	protected.Post("/checkout", checkoutHandler.Checkout)
}
