package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/observability"
)

// AppOptions configures the HTTP application.
type AppOptions struct {
	Name           string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RequestTimeout time.Duration
	Routes         RouteConfig
}

// NewApp builds the Fiber application with middlewares and routes attached.
func NewApp(opts AppOptions) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, opts.Metrics, opts.RequestTimeout)
	RegisterRoutes(app, opts.Routes)
	return app
}
