package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/storeline/backend/internal/application/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/interfaces/http/dto"
)

// TenantHeader names the tenant explicitly
const TenantHeader = "X-Tenant-ID"

// TenantResolver derives the request tenant from its signals
type TenantResolver interface {
	Resolve(ctx context.Context, s appidentity.TenantSignals) (shared.TenantContext, error)
}

// TenantConfig holds configuration for tenant resolution
type TenantConfig struct {
	Resolver TenantResolver
	// CookieName is the session cookie consulted last
	CookieName string
}

// ResolveTenant resolves the tenant from the header, the authenticated
// principal or the session cookie and binds it to the request. Requests
// without a tenant stop here with 403.
func ResolveTenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		signals := appidentity.TenantSignals{
			Header:    c.GetHeader(TenantHeader),
			Principal: GetPrincipal(c),
		}
		if cfg.CookieName != "" {
			if sid, err := c.Cookie(cfg.CookieName); err == nil {
				signals.SessionID = sid
			}
		}

		tc, err := cfg.Resolver.Resolve(c.Request.Context(), signals)
		if err != nil {
			if errors.Is(err, shared.ErrTenantNotIdentified) {
				AbortTenantNotIdentified(c)
				return
			}
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		BindTenant(c, tc)
		c.Next()
	}
}

// BindTenant stores tc on the gin and request contexts
func BindTenant(c *gin.Context, tc shared.TenantContext) {
	c.Set(TenantContextKey, tc)
	ctx := shared.WithTenantContext(c.Request.Context(), tc)
	ctx, _ = logger.WithTenantID(ctx, tc.TenantID().String())
	c.Request = c.Request.WithContext(ctx)
}

// AbortTenantNotIdentified writes the 403 tenant body
func AbortTenantNotIdentified(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, dto.TenantErrorResponse{Error: shared.ErrTenantNotIdentified.Message})
}
