package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetLoggerFromContext returns the logger TraceLoggerMiddleware stored for this
// request, or a no-op logger on routes mounted without it.
func GetLoggerFromContext(c *fiber.Ctx) *zap.Logger {
	if logger, ok := c.Locals(loggerKey).(*zap.Logger); ok {
		return logger
	}

	return zap.NewNop()
}
