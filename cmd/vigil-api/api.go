// Package main provides the Vigil API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/nexuslab/vigil/pkg/engine"
	"github.com/nexuslab/vigil/pkg/feed"
	"github.com/nexuslab/vigil/pkg/notification"
	"github.com/nexuslab/vigil/pkg/persistence"
	"github.com/nexuslab/vigil/pkg/services"
	"github.com/nexuslab/vigil/pkg/web"
)

type API struct {
	logger    *slog.Logger
	store     persistence.Store
	alertFeed feed.Feed
	validate  *validator.Validate
}

func NewAPI(logger *slog.Logger, store persistence.Store, alertFeed feed.Feed) *API {
	return &API{
		logger:    logger,
		store:     store,
		alertFeed: alertFeed,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflowService(a.store, a.logger)
	dispatcher := notification.NewDispatcher(notification.ConfigFromEnv(), a.logger)
	eng := engine.NewEngine(a.store, dispatcher, a.alertFeed, a.logger)

	handlers := web.NewAPIHandlers(workflowService, eng, a.store, a.alertFeed, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Vigil API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
