package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func serveHealth(t *testing.T, h *HealthHandler, method string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	h.RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, "/health", nil))

	var response HealthResponse
	if rr.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	}
	return rr, response
}

func TestHealthCheck(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	h := NewHealthHandler("folio-api", "1.0.0", up, nil)

	rr, response := serveHealth(t, h, http.MethodGet)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "folio-api", response.Service)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Equal(t, "up", response.DB)
	assert.Equal(t, "disabled", response.Redis)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	down := pingFunc(func(context.Context) error { return errors.New("refused") })
	h := NewHealthHandler("folio-api", "1.0.0", down, down)

	rr, response := serveHealth(t, h, http.MethodGet)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", response.Status)
	assert.Equal(t, "down", response.Redis)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	h := NewHealthHandler("folio-api", "1.0.0", nil, nil)

	rr, _ := serveHealth(t, h, http.MethodPost)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
