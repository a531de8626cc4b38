package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetrics_DisabledPassesThrough(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)

	mw, err := HTTPMetrics(HTTPMetricsConfig{MeterProvider: mp, Enabled: true})
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/test", respondOK)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPMetricsWithMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	mw, err := HTTPMetricsWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	tc := shared.MustTenantContext(uuid.New(), shared.TenantSourceHeader)
	router := gin.New()
	router.Use(mw)
	router.POST("/products/:id", func(c *gin.Context) {
		c.Set(TenantContextKey, tc)
		c.String(http.StatusCreated, "created")
	})
	router.GET("/missing/:id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/"+uuid.NewString(), strings.NewReader(`{"name":"tea"}`)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	metrics := collectMetrics(t, reader)

	total, ok := metrics["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	byRoute := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		byRoute[route.AsString()] += dp.Value
		if route.AsString() == "/products/:id" {
			tenant, ok := dp.Attributes.Value(attribute.Key("tenant_id"))
			require.True(t, ok)
			assert.Equal(t, tc.String(), tenant.AsString())
			status, _ := dp.Attributes.Value(attribute.Key("http.status_code"))
			assert.Equal(t, int64(http.StatusCreated), status.AsInt64())
		}
	}
	assert.Equal(t, map[string]int64{"/products/:id": 2, "/missing/:id": 1}, byRoute)

	duration, ok := metrics["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range duration.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	size, ok := metrics["http_server_request_size_bytes"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.Equal(t, uint64(2), size.DataPoints[0].Count)

	active, ok := metrics["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}
