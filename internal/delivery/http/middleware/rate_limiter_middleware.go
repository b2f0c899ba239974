package middleware

import (
	"time"

	"github.com/ferdian3456/threadit/internal/constant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

const (
	defaultRateLimitMax     = 100
	defaultAuthRateLimitMax = 20
)

func tooManyRequests(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_RATE_LIMIT_ERROR_CODE,
			"message": message,
		},
	})
}

// SetupRateLimiter limits every client IP to max requests per minute. A max of
// zero or less uses the default.
func SetupRateLimiter(logger *zap.Logger, max int) fiber.Handler {
	if max <= 0 {
		max = defaultRateLimitMax
	}

	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			// Skip rate limiting for health check endpoint
			return c.Path() == "/api/health"
		},
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Rate limit exceeded", zap.String("ip", c.IP()))
			return tooManyRequests(c, "Rate limit exceeded, please try again later")
		},
	})
}

// SetupAuthRateLimiter is the stricter limiter in front of login and signup.
func SetupAuthRateLimiter(logger *zap.Logger, max int) fiber.Handler {
	if max <= 0 {
		max = defaultAuthRateLimitMax
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 5 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("Auth rate limit exceeded", zap.String("ip", c.IP()))
			return tooManyRequests(c, "Too many authentication attempts, please try again later")
		},
	})
}
