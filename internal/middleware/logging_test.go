package middleware

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"testing"

	"workshophub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandler_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&ctxHandler{slog.NewTextHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = WithUserID(ctx, 42)
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")

	logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "user_id=42")
	assert.Contains(t, out, "trace_id=trace-1")
	assert.Contains(t, out, "component=test")
}

func TestContextMiddleware_CopiesLocals(t *testing.T) {
	app := fiber.New()
	var got context.Context
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-9")
		c.Locals("userID", uint(7))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		got = c.UserContext()
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "rid-9", got.Value(RequestIDKey))
	assert.Equal(t, uint(7), got.Value(UserIDKey))
}

func TestNewLogger_ProductionUsesJSON(t *testing.T) {
	logger := NewLogger("production")
	h, ok := logger.Handler().(*ctxHandler)
	require.True(t, ok)
	_, isJSON := h.Handler.(*slog.JSONHandler)
	assert.True(t, isJSON)
}

func TestStructuredLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = slog.New(&ctxHandler{slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	t.Cleanup(func() { Logger = prev })

	app := fiber.New()
	app.Use(StructuredLogger())
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/workshops/:slug", func(c *fiber.Ctx) error {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Workshop", c.Params("slug")))
	})
	app.Get("/api/hello", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/broken", func(c *fiber.Ctx) error { return fmt.Errorf("db down") })

	tests := []struct {
		path string
		want []string
	}{
		{path: "/health/live", want: nil},
		{path: "/api/workshops/missing", want: []string{"level=WARN", "route=/api/workshops/:slug", "error_code=NOT_FOUND", "status=404"}},
		{path: "/api/hello", want: []string{"level=INFO", "status=200"}},
		{path: "/does-not-exist", want: []string{"level=WARN", "status=404"}},
		{path: "/api/broken", want: []string{"level=ERROR", "status=500", "error=\"db down\""}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()
			_, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, buf.String())
				return
			}
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewLogger("development").Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewLogger("test").Enabled(ctx, slog.LevelInfo))
	assert.False(t, NewLogger("production").Enabled(ctx, slog.LevelDebug))
}
