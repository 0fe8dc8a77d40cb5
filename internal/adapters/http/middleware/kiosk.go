package middleware

import (
	"time"

	"bioponto/internal/config"
	"bioponto/internal/pkg/password"
	"bioponto/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// KioskKeyHeader carries the shared terminal key
const KioskKeyHeader = "X-Kiosk-Key"

// KioskAuth checks the shared key of the time clock terminals against its
// bcrypt hash. Without a configured hash (dev only) every request passes.
func KioskAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Kiosk.APIKeyHash == "" {
			return c.Next()
		}
		if !password.VerifyKey(c.Get(KioskKeyHeader), cfg.Kiosk.APIKeyHash) {
			return response.Unauthorized(c, "Invalid kiosk key")
		}
		return c.Next()
	}
}

// KioskRateLimiter limits each terminal to cfg.Kiosk.RateLimit requests per minute
func KioskRateLimiter(cfg *config.Config) fiber.Handler {
	limit := cfg.Kiosk.RateLimit
	if limit < 1 {
		limit = 30
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "-kiosk"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Fail(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "Too many punches from this terminal, wait a moment", nil)
		},
	})
}
