package middleware

import (
	"net/http/httptest"
	"testing"

	"workshophub/internal/models"
	"workshophub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/workshops/:slug", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Workshop", c.Params("slug")))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/workshops/reactjs-workshop", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	workshop := spans[0]
	assert.Equal(t, "GET /api/workshops/:slug", workshop.Name())
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range workshop.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "/api/workshops/:slug", attrs["http.route"].AsString())
	assert.Equal(t, int64(404), attrs["http.status_code"].AsInt64())
	assert.Equal(t, "7", attrs["enduser.id"].AsString())
	assert.Equal(t, models.CodeNotFound, attrs["app.error_code"].AsString())
	assert.Equal(t, codes.Unset, workshop.Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
