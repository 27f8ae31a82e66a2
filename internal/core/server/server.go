package server

import (
	"fmt"

	"trip-stitcher/internal/core/config"
	"trip-stitcher/internal/core/httpclient"
	"trip-stitcher/internal/core/logger"
	"trip-stitcher/internal/core/metrics"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "trip-stitcher/docs/swagger"
)

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
}

// New creates a new Server instance with configured middleware. When m is
// not nil its registry is served at /metrics.
func New(cfg *config.AppConfig, m *metrics.Metrics) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "trip-stitcher",
	})

	app.Use(requestid.New(requestid.Config{
		Header: httpclient.RayIDHeader,
	}))

	// Outgoing calls made while serving a request carry its ray id.
	app.Use(func(c *fiber.Ctx) error {
		if id, ok := c.Locals("requestid").(string); ok {
			c.SetUserContext(httpclient.WithRayID(c.UserContext(), id))
		}
		return c.Next()
	})

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	return &Server{
		App: app,
		cfg: cfg,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
