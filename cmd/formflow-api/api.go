// Package main provides the Formflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/formflow/pkg/eventbus"
	"github.com/dukex/formflow/pkg/palette"
	"github.com/dukex/formflow/pkg/persistence"
	"github.com/dukex/formflow/pkg/services"
	"github.com/dukex/formflow/pkg/stagelist"
	"github.com/dukex/formflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger              *slog.Logger
	persistence         persistence.Persistence
	eventBus            eventbus.EventPublisher
	tracer              trace.Tracer
	palette             *palette.Palette
	validate            *validator.Validate
	deleteTrailingFirst bool
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventPublisher,
	tracer trace.Tracer,
	palette *palette.Palette,
	deleteTrailingFirst bool,
) *API {
	return &API{
		persistence:         persistence,
		logger:              logger,
		eventBus:            eventBus,
		tracer:              tracer,
		palette:             palette,
		validate:            validator.New(validator.WithRequiredStructEnabled()),
		deleteTrailingFirst: deleteTrailingFirst,
	}
}

func (a *API) App() *fiber.App {
	definitionService := services.NewDefinition(a.persistence)
	designer := services.NewDesigner(
		a.persistence,
		a.eventBus,
		a.palette,
		a.tracer,
		stagelist.WithDeleteTrailingStageFirst(a.deleteTrailingFirst),
	)

	handlers := web.NewAPIHandlers(definitionService, designer, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Formflow API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
