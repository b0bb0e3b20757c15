// Package app wires configuration, storage, services and HTTP handlers into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/handlers"
	"inventory/internal/middleware"
	"inventory/internal/repositories"
	"inventory/internal/services"
	"inventory/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// App owns every long-lived resource of the service.
type App struct {
	cfg    config.Config
	logger zerolog.Logger
	http   *fiber.App
	db     *gorm.DB
	broker *rabbitmq.Client

	productService *services.ProductService
	authService    *services.AuthService
}

// New builds the application for cfg. Resources acquired before a failure are released.
func New(cfg config.Config, logger zerolog.Logger) (*App, error) {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	a := &App{cfg: cfg, logger: logger}
	if err := a.wire(); err != nil {
		if cerr := a.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("releasing resources after failed start")
		}
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	var (
		productRepo  repositories.ProductRepository
		operatorRepo repositories.OperatorRepository
	)
	if a.cfg.DatabaseDriver == config.DriverMemory {
		a.logger.Warn().Msg("using in-memory product store, data is lost on exit")
		productRepo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(a.cfg, a.logger)
		if err != nil {
			return err
		}
		a.db = db
		productRepo = repositories.NewGORMProductRepository(db)
		operatorRepo = repositories.NewGORMOperatorRepository(db)
	}

	var publisher services.EventPublisher
	if a.cfg.EventsEnabled() {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: a.cfg.RabbitMQURL, Exchange: a.cfg.RabbitMQExchange}, a.logger)
		if err != nil {
			return err
		}
		a.broker = client
		publisher = client
	}

	a.productService = services.NewProductService(productRepo, publisher, a.logger)
	if a.cfg.AuthEnabled {
		if operatorRepo == nil {
			return errors.New("operator authentication needs a SQL database")
		}
		a.authService = services.NewAuthService(operatorRepo, a.cfg.JWTSecret, a.cfg.JWTTTL, a.logger)
	}

	a.http = a.newServer()
	return nil
}

func (a *App) newServer() *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               "inventory",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(a.logger),
	})

	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Output: a.logger.With().Str("component", "http").Logger(),
	}))

	var broker handlers.BrokerStatus
	if a.broker != nil {
		broker = a.broker
	}
	handlers.NewHealthHandler(a.db, broker).RegisterRoutes(server)

	var guard []fiber.Handler
	if a.authService != nil {
		handlers.NewAuthHandler(a.authService, a.logger).RegisterRoutes(server)
		guard = append(guard, middleware.AuthRequired(a.authService))
	}

	productHandler := handlers.NewProductHandler(a.productService, handlers.Pagination{
		DefaultSize: a.cfg.PageSizeDefault,
		MaxSize:     a.cfg.PageSizeMax,
	}, a.logger)
	productHandler.RegisterRoutes(server, guard...)

	return server
}

// errorHandler renders errors no handler answered itself, such as unknown
// routes or recovered panics, in the same JSON shape the handlers use.
func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled request error")
		}
		return c.Status(code).JSON(fiber.Map{
			"message": utils.StatusMessage(code),
			"error":   err.Error(),
		})
	}
}

// Server returns the Fiber application.
func (a *App) Server() *fiber.App {
	return a.http
}

// AuthService returns the operator auth service, or nil when auth is disabled.
func (a *App) AuthService() *services.AuthService {
	return a.authService
}

// Listen serves HTTP on the configured port until Shutdown is called.
func (a *App) Listen() error {
	a.logger.Info().Str("addr", a.cfg.AppPort).Bool("auth", a.cfg.AuthEnabled).Bool("events", a.broker != nil).Msg("starting server")
	return a.http.Listen(a.cfg.AppPort)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done.
func (a *App) Shutdown(ctx context.Context) error {
	if a.http == nil {
		return nil
	}
	return a.http.ShutdownWithContext(ctx)
}

// Close releases the broker connection and the database pool.
func (a *App) Close() error {
	var errs []error
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			errs = append(errs, err)
		}
		a.broker = nil
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
