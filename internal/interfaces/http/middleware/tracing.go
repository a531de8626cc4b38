package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin. Span names follow
// the route pattern, e.g. "GET /api/v1/products/:id".
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// SpanAttributes copies request, tenant and user ids onto the active span and
// marks 4xx/5xx responses as errors. It runs after ResolveTenant.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if tc, ok := GetTenantContext(c); ok {
				span.SetAttributes(
					attribute.String("tenant_id", tc.TenantID().String()),
					attribute.String("tenant_source", string(tc.Source())),
				)
			}
			if claims := GetClaims(c); claims != nil {
				span.SetAttributes(attribute.String("user_id", claims.UserID.String()))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}
