package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/open-teleop/keyteleop/pkg/config"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
)

const shutdownTimeout = 5 * time.Second

// Server is the optional HTTP side channel exposing the operator status
type Server struct {
	app    *fiber.App
	port   int
	logger customlog.Logger
}

// NewServer builds the Fiber app. Access logs go to accessLog, never to
// stdout, which belongs to the status line.
func NewServer(cfg *config.Config, source StatusSource, accessLog io.Writer, logger customlog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "keyteleop",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(fiberlogger.New(fiberlogger.Config{Output: accessLog}))
	app.Use(recover.New())

	RegisterStatusRoutes(app, source, cfg.StatusInterval(), logger)

	return &Server{app: app, port: cfg.Server.HTTPPort, logger: logger}
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start serves in the background. A listen failure is logged; it never
// affects the teleop session.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.port)
	go func() {
		s.logger.Infof("Status server starting on %s", addr)
		if err := s.app.Listen(addr); err != nil {
			s.logger.Errorf("Status server stopped: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting up to five seconds for open requests
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Infof("Status server exited properly")
	return nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
