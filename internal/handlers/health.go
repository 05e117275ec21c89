package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is satisfied by a Redis client health check.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	redis   Pinger
	version string
}

func NewHealthHandler(redis Pinger, version string) *HealthHandler {
	return &HealthHandler{redis: redis, version: version}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	redisStatus := "connected"

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.redis(ctx); err != nil {
			status = "degraded"
			redisStatus = err.Error()
		}
	} else {
		redisStatus = "disabled"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"version": h.version,
		"services": fiber.Map{
			"redis": redisStatus,
		},
	})
}
