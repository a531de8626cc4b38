package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Authorizer decides whether a principal holds a permission in a tenant
type Authorizer interface {
	Authorize(ctx context.Context, tc shared.TenantContext, principal identity.Principal, perm identity.Permission) error
}

// RequirePermission lets the request through only when the authenticated
// principal holds perm in the resolved tenant. It must run after
// Authenticate and ResolveTenant.
func RequirePermission(authz Authorizer, perm identity.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, ok := GetTenantContext(c)
		if !ok {
			AbortTenantNotIdentified(c)
			return
		}
		principal := GetPrincipal(c)
		if principal == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		err := authz.Authorize(c.Request.Context(), tc, principal, perm)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, shared.ErrPermissionDenied):
			abortWithError(c, http.StatusForbidden, shared.ErrPermissionDenied.Code, shared.ErrPermissionDenied.Message)
		default:
			logger.FromContext(c.Request.Context()).Error("Permission check failed",
				zap.String("permission", perm.String()), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		}
	}
}
