//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"court-booking/internal/handler/middleware"
	"court-booking/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := gin.New()
	router.Use(middleware.Metrics(m))
	router.GET("/api/reservations/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/reservations/a", "/api/reservations/b", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(reg, "court_booking_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per route template and code")
}

func TestMetricsMiddleware_NilRecorder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Metrics(nil))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
