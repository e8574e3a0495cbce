package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"

	"github.com/example/atlaspay/internal/config"
	"github.com/example/atlaspay/internal/handlers"
	"github.com/example/atlaspay/internal/metrics"
	"github.com/example/atlaspay/internal/middleware"
	"github.com/example/atlaspay/internal/services"
	"github.com/example/atlaspay/internal/store"
	"github.com/example/atlaspay/internal/worker"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log *slog.Logger, pool *worker.Pool) {
	txnStore := store.NewGormStore(db)
	orders := services.NewOrderDirectory(db)
	notifier := services.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	gatewaySvc := services.NewGatewayService(txnStore, notifier, pool, log, cfg.StoreTimeout)

	authHandler := handlers.NewAuthHandler(db, cfg)
	gatewayHandler := handlers.NewGatewayHandler(db, gatewaySvc, orders, txnStore, log, cfg.GatewayMerchantID, cfg.GatewayCheckoutURL)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Gateway payment routes
	gateway := api.Group("/gateway")
	gateway.Post("/pay", middleware.GatewayAuth(cfg.GatewayMerchantKey), gatewayHandler.Pay)
	gateway.Post("/checkout", gatewayHandler.Checkout)
	gateway.Get("/transactions", middleware.DashboardAuth(cfg, log), gatewayHandler.ListTransactions)
}
