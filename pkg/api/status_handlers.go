package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/open-teleop/keyteleop/domain/status"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
)

// StatusSource provides the operator status served by the API
type StatusSource interface {
	Current() status.Report
}

// StatusHandler holds dependencies for the status API endpoints.
type StatusHandler struct {
	source   StatusSource
	interval time.Duration
	logger   customlog.Logger
}

// NewStatusHandler creates a new handler for status endpoints.
func NewStatusHandler(source StatusSource, interval time.Duration, logger customlog.Logger) *StatusHandler {
	if source == nil {
		panic("StatusSource cannot be nil in NewStatusHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewStatusHandler")
	}
	return &StatusHandler{
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// RegisterStatusRoutes registers the health, status and status stream endpoints.
// All of them are read-only.
func RegisterStatusRoutes(app *fiber.App, source StatusSource, interval time.Duration, logger customlog.Logger) {
	h := NewStatusHandler(source, interval, logger)

	app.Get("/health", h.handleHealth)

	apiGroup := app.Group("/api/v1")
	apiGroup.Get("/status", h.handleGetStatus)

	// Only WebSocket upgrades may reach /ws
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(func(conn *websocket.Conn) {
		StatusWebSocketHandler(conn, h.source, h.interval, h.logger)
	}))

	logger.Infof("Registered status API endpoints under /api/v1 and /ws/status")
}

func (h *StatusHandler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// handleGetStatus handles GET requests for the current status report.
func (h *StatusHandler) handleGetStatus(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/status")
	return c.JSON(fiber.Map{
		"status": "success",
		"report": h.source.Current(),
	})
}
