package middleware

import (
	"time"

	"diyari_backend/pkg/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// AuthRateLimiter throttles register/login per client IP. Counters live in
// Redis when it is configured and in process memory otherwise.
func AuthRateLimiter(max int, window time.Duration) fiber.Handler {
	cfg := limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many attempts, please try again later",
			})
		},
	}
	if cache.RedisClient != nil {
		cfg.Storage = cache.NewStorage(cache.RedisClient, "limiter:auth:")
	}
	return limiter.New(cfg)
}
