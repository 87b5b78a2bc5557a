package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"workshophub/internal/config"
	"workshophub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testServer struct {
	s   *Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
	rdb *redis.Client
}

func newTestServer(t *testing.T, flags string) *testServer {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:          testSecret,
		JWTTTLHours:        1,
		Env:                "test",
		FeatureFlags:       flags,
		ResetTokenTTLHours: 24,
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testServer{s: s, app: s.NewApp(), db: db, mr: mr, rdb: rdb}
}

// do sends a JSON request and decodes the JSON response body, if any.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	status, raw := ts.doRaw(t, method, path, body, token)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

// doList is do for endpoints returning a JSON array.
func (ts *testServer) doList(t *testing.T, method, path string, token string) (int, []map[string]any) {
	t.Helper()
	status, raw := ts.doRaw(t, method, path, nil, token)
	var out []map[string]any
	if status == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (ts *testServer) doRaw(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// register creates an account through the API and returns its session token and user ID.
func (ts *testServer) register(t *testing.T, username string) (string, uint) {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret123",
		"password2": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, status, body)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	return token, uint(user["id"].(float64))
}

func TestHello(t *testing.T) {
	ts := newTestServer(t, "")

	status, body := ts.do(t, http.MethodGet, "/api/hello", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Welcome to Workshop Enrollment API!", body["message"])
	assert.Equal(t, "success", body["status"])
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t, "")

	status, body := ts.do(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = ts.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	ts.mr.Close()
	status, body = ts.do(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unhealthy", checks["redis"])
}

func TestAuthRequired_Rejects(t *testing.T) {
	ts := newTestServer(t, "")

	tests := []struct {
		name  string
		token string
	}{
		{name: "Missing Token", token: ""},
		{name: "Malformed Token", token: "malformed.token.here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, http.MethodGet, "/api/enrollments", nil, tt.token)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}

func TestErrorHandler_NotFoundRoute(t *testing.T) {
	ts := newTestServer(t, "")

	status, body := ts.do(t, http.MethodGet, "/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestFeatureFlagsEndpoint(t *testing.T) {
	ts := newTestServer(t, "reset_token_in_response=off")
	token, _ := ts.register(t, "flags_user")

	status, body := ts.do(t, http.MethodGet, "/api/feature-flags", nil, token)
	require.Equal(t, http.StatusOK, status)
	raw := body["raw"].(map[string]any)
	evaluated := body["evaluated"].(map[string]any)
	assert.Equal(t, "off", raw["reset_token_in_response"])
	assert.Equal(t, false, evaluated["reset_token_in_response"])
	assert.Equal(t, true, evaluated["realtime_seats"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	ts.do(t, http.MethodGet, "/api/hello", nil, "")

	status, raw := ts.doRaw(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "workshophub")
}
