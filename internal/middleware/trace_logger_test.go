package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTraceLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(TraceLoggerMiddleware(zap.New(core)))
	app.Get("/api/posts/:postId", func(c *fiber.Ctx) error {
		GetLoggerFromContext(c).Info("handled")
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	entries := logs.FilterMessage("handled").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, "/api/posts/abc", fields["path"])
	// no span is active without otelfiber
	assert.NotContains(t, fields, "trace_id")
}

func TestGetLoggerFromContextFallback(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/", func(c *fiber.Ctx) error {
		assert.NotNil(t, GetLoggerFromContext(c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
