package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BrokerStatus reports whether the event broker connection is alive.
type BrokerStatus interface {
	Connected() bool
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	db     *gorm.DB
	broker BrokerStatus
}

// NewHealthHandler creates a HealthHandler. A nil db means the in-memory
// store is in use; a nil broker means events are disabled.
func NewHealthHandler(db *gorm.DB, broker BrokerStatus) *HealthHandler {
	return &HealthHandler{db: db, broker: broker}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth reports the service state. It answers 503 when the database is unreachable.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": "memory",
		"broker":   "disabled",
	}

	if h.db != nil {
		body["database"] = "up"
		if err := h.pingDB(c.UserContext()); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "down"
			body["error"] = err.Error()
		}
	}

	if h.broker != nil {
		body["broker"] = "connected"
		if !h.broker.Connected() {
			body["broker"] = "disconnected"
		}
	}

	return c.Status(status).JSON(body)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
