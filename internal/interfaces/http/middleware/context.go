package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/auth"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/interfaces/http/dto"
)

// Gin context keys set by the chain
const (
	ClaimsKey        = "jwt_claims"
	TenantContextKey = "tenant_context"
)

// GetClaims returns the validated token claims, or nil on anonymous requests
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetPrincipal returns the authenticated principal, or nil
func GetPrincipal(c *gin.Context) identity.Principal {
	if claims := GetClaims(c); claims != nil {
		return claims.Principal()
	}
	return nil
}

// GetTenantContext returns the tenant resolved for the request
func GetTenantContext(c *gin.Context) (shared.TenantContext, bool) {
	if v, ok := c.Get(TenantContextKey); ok {
		if tc, ok := v.(shared.TenantContext); ok && !tc.IsZero() {
			return tc, true
		}
	}
	return shared.TenantContext{}, false
}

// GetRequestID returns the id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(logger.RequestIDKey)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
