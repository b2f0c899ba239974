package middleware

import (
	"github.com/ferdian3456/threadit/internal/observability"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

const loggerKey = "logger"

// TraceLoggerMiddleware stores a request scoped logger in Locals. It must run
// after otelfiber so the trace_id and span_id of the request span are known.
func TraceLoggerMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestLogger := observability.WithContext(c.UserContext(), logger).With(
			zap.String("method", c.Method()),
			zap.String("path", utils.CopyString(c.Path())),
		)

		c.Locals(loggerKey, requestLogger)

		return c.Next()
	}
}
