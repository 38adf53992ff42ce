// Package main provides the Hireflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/services"
	"github.com/dukex/hireflow/pkg/web"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	engine      *workflow.Engine
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	engine *workflow.Engine,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		eventBus:    eventBus,
		engine:      engine,
		validate:    models.NewValidator(),
	}
}

func (a *API) App() *fiber.App {
	rules := services.NewRules(a.logger, a.persistence, a.eventBus, a.engine)
	handlers := web.NewAPIHandlers(rules, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hireflow API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
