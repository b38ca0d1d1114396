package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/ferreteria-api/internal/application/auth"
	"github.com/jhoicas/ferreteria-api/internal/application/cash"
	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/credit"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *catalog.ProductUseCase
	CartUC        *sales.CartUseCase
	FinalizeSale  *sales.FinalizeSaleUseCase
	SaleQuery     *sales.SaleQueryUseCase
	Returns       *sales.ProcessReturnUseCase
	Cash          *cash.Manager
	Ledger        *inventory.Ledger
	Movements     *inventory.RegisterMovementUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Credit        *credit.UseCase
	JWTSecret     string
	// Metrics handler de Prometheus; nil no expone /metrics.
	Metrics nethttp.Handler
	// Health chequeo de dependencias (DB, Redis); nil responde siempre ok.
	Health func(c *fiber.Ctx) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleCajero)

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), anyRole)
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)
	protected.Get("/users", adminOnly, authHandler.ListUsers)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.ListLowStock)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Put("/:id/stock", adminOnly, productHandler.SetStock)
	products.Put("/:id/price-rules", adminOnly, productHandler.SetPriceRules)

	// Carts (uno por terminal)
	carts := protected.Group("/carts")
	cartHandler := NewCartHandler(deps.CartUC, deps.FinalizeSale)
	carts.Get("/:cartID", cartHandler.Get)
	carts.Delete("/:cartID", cartHandler.Clear)
	carts.Post("/:cartID/lines", cartHandler.AddLine)
	carts.Patch("/:cartID/lines/:index", cartHandler.UpdateLine)
	carts.Delete("/:cartID/lines/:index", cartHandler.RemoveLine)
	carts.Post("/:cartID/discount", cartHandler.ApplyDiscount)
	carts.Post("/:cartID/checkout", cartHandler.Checkout)

	// Sales, receipts and returns
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleQuery, deps.Returns)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.Get)
	salesGroup.Get("/:id/receipt.pdf", saleHandler.ReceiptPDF)
	salesGroup.Get("/:id/returns", saleHandler.ListReturns)
	salesGroup.Post("/:id/returns", saleHandler.ProcessReturn)
	salesGroup.Post("/:id/void", adminOnly, saleHandler.Void)

	// Cash drawer
	cashGroup := protected.Group("/cash")
	cashHandler := NewCashHandler(deps.Cash)
	cashGroup.Post("/sessions", cashHandler.Open)
	cashGroup.Get("/sessions", cashHandler.List)
	cashGroup.Get("/sessions/current", cashHandler.Current)
	cashGroup.Post("/sessions/close", cashHandler.Close)
	cashGroup.Get("/sessions/:id", cashHandler.Get)
	cashGroup.Get("/sessions/:id/movements", cashHandler.ListMovements)
	cashGroup.Post("/movements", cashHandler.RecordMovement)
	cashGroup.Get("/balance", cashHandler.Balance)

	// Kardex and inventory
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Movements, deps.Replenishment)
	protected.Get("/kardex", inventoryHandler.Kardex)
	protected.Get("/kardex/:productID/verify", inventoryHandler.Verify)
	protected.Post("/inventory/movements", adminOnly, inventoryHandler.RegisterMovement)
	protected.Get("/inventory/replenishment", inventoryHandler.Replenishment)

	// Customers (crédito)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.Credit)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
	customers.Get("/:id/payments", customerHandler.ListPayments)
	customers.Post("/:id/payments", customerHandler.RegisterPayment)
}
