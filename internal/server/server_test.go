package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"camerastore/internal/config"
	"camerastore/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(ping pingerFunc) (*echo.Echo, *bytes.Buffer) {
	var buf bytes.Buffer
	lg := log.New("test")
	lg.SetOutput(&buf)

	cfg := config.Config{JWTSecret: "s", FEURL: "http://localhost:5173"}
	e := New(cfg, lg)
	RegisterRoutes(e, cfg, nil, ping, Handlers{
		Auth:    handler.NewAuthHandler(nil),
		Product: handler.NewProductHandler(nil),
		Cart:    handler.NewCartHandler(nil),
		Order:   handler.NewOrderHandler(nil),
		Admin:   handler.NewAdminHandler(nil, nil),
	})
	return e, &buf
}

func TestHealth(t *testing.T) {
	e, logs := newTestServer(func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Contains(t, logs.String(), `"uri":"/health"`)
}

func TestHealth_DatabaseDown(t *testing.T) {
	e, _ := newTestServer(func(ctx context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database unavailable")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e, _ := newTestServer(func(ctx context.Context) error { return nil })

	for _, path := range []string{"/orders", "/cart", "/auth/me", "/admin/audit-logs"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAllowOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, allowOrigins(""))
	assert.Equal(t, []string{"http://a", "http://b"}, allowOrigins("http://a, http://b"))
}
