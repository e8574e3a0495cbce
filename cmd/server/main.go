package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/atlaspay/internal/config"
	"github.com/example/atlaspay/internal/database"
	"github.com/example/atlaspay/internal/logger"
	"github.com/example/atlaspay/internal/metrics"
	"github.com/example/atlaspay/internal/routes"
	"github.com/example/atlaspay/internal/worker"
)

func main() {
	cfg := config.Load()
	slogger := logger.New(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database setup failed: %v", err)
	}

	metrics.Init()

	pool := worker.NewPool(cfg.NotifyWorkers)
	defer pool.Stop()

	app := fiber.New(fiber.Config{
		AppName: "AtlasPay Merchant Backend",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, db, cfg, slogger, pool)

	slogger.Info("starting server", "port", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
