// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"mealpay/internal/handlers"
	"mealpay/internal/middleware"
	"mealpay/internal/models"
)

// Dependencies carries everything SetupRoutes wires.
type Dependencies struct {
	Health       *handlers.HealthHandler
	Fees         *handlers.FeeHandler
	Orders       *handlers.OrderHandler
	Auth         *middleware.AuthMiddleware
	QuoteLimiter *middleware.LimiterStore
	OrderRateMax int
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", deps.Health.Check)

	api := app.Group("/api")

	// Public fee calculator, throttled per client
	feeRoutes := api.Group("/fees")
	if deps.QuoteLimiter != nil {
		feeRoutes.Use(middleware.Throttle(deps.QuoteLimiter))
	}
	feeRoutes.Get("/rates", deps.Fees.GetRates)
	feeRoutes.Get("/vectors", deps.Fees.GetVectors)
	feeRoutes.Post("/split", deps.Fees.Split)
	feeRoutes.Post("/breakdown", deps.Fees.Breakdown)
	feeRoutes.Post("/quote", deps.Fees.Quote)

	protected := api.Group("", deps.Auth.Handler)
	setupOrderRoutes(protected, deps)
}

func setupOrderRoutes(router fiber.Router, deps Dependencies) {
	orders := router.Group("/orders")
	orders.Post("/",
		middleware.RequireRole(models.RoleBuyer),
		middleware.HasPermission(models.PermissionOrderWrite),
		orderLimiter(deps.OrderRateMax),
		deps.Orders.PlaceOrder,
	)
	orders.Get("/", middleware.RequireRole(models.RoleBuyer), deps.Orders.ListBuyerOrders)
	orders.Get("/:reference", middleware.HasPermission(models.PermissionOrderRead), deps.Orders.GetOrder)

	seller := router.Group("/seller", middleware.RequireRole(models.RoleSeller))
	seller.Get("/orders", middleware.HasPermission(models.PermissionPayoutRead), deps.Orders.ListSellerOrders)
}

func orderLimiter(max int) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := c.Locals("userID").(uint); ok {
				return "order:" + c.IP() + ":" + strconv.FormatUint(uint64(id), 10)
			}
			return "order:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
