package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/boardkit/ticket-board/internal/api/dto"
	"github.com/boardkit/ticket-board/internal/observability"
	"github.com/boardkit/ticket-board/internal/persistence"
)

// HealthHandler serves liveness/readiness probes.
type HealthHandler struct {
	redis   *persistence.Redis
	metrics *observability.Metrics
}

// NewHealthHandler constructs handler.
func NewHealthHandler(redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{redis: redis, metrics: metrics}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(dto.OK(fiber.Map{"status": "ok"}))
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}
	if h.redis != nil {
		if err := h.redis.Ping(c.UserContext()); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}
	if h.metrics != nil {
		requests, errors := h.metrics.Snapshot()
		var served, failed int64
		for _, v := range requests {
			served += v
		}
		for _, v := range errors {
			failed += v
		}
		status["requests_served"] = served
		status["requests_failed"] = failed
	}
	return c.JSON(dto.OK(status))
}
