package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeviceStatus reports whether the fingerprint reader is in use
type DeviceStatus interface {
	DeviceBusy() bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	dbCheck func(ctx context.Context) error
	device  DeviceStatus
	mode    string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dbCheck func(ctx context.Context) error, device DeviceStatus, mode string) *HealthHandler {
	return &HealthHandler{dbCheck: dbCheck, device: device, mode: mode}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🕒 BioPonto API v1.0 is running",
		"mode":    h.mode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, database and fingerprint reader
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	code, status, dbStatus := fiber.StatusOK, "ok", "healthy"
	if err := h.dbCheck(ctx); err != nil {
		code, status, dbStatus = fiber.StatusServiceUnavailable, "degraded", "unhealthy"
	}

	deviceStatus := "idle"
	if h.device.DeviceBusy() {
		deviceStatus = "busy"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
			"device":   deviceStatus,
		},
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "BioPonto API v1.0",
		"version": "1.0.0",
	})
}
