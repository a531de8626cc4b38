package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/storeline/backend/internal/application/identity"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/interfaces/http/dto"
	"github.com/storeline/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	BaseHandler
	auth     *appidentity.AuthService
	resolver middleware.TenantResolver
	cookie   config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *appidentity.AuthService, resolver middleware.TenantResolver, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: auth, resolver: resolver, cookie: cookie}
}

// onboardingTenant resolves the tenant named in a register or login body
func (h *AuthHandler) onboardingTenant(c *gin.Context, bodyTenant string) bool {
	tc, err := h.resolver.Resolve(c.Request.Context(), appidentity.TenantSignals{
		Onboarding: true,
		BodyTenant: bodyTenant,
	})
	if err != nil {
		h.HandleError(c, err)
		return false
	}
	middleware.BindTenant(c, tc)
	return true
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.BindJSON(c, &req) || !h.onboardingTenant(c, req.TenantID) {
		return
	}
	tc, _ := middleware.GetTenantContext(c)

	result, err := h.auth.Register(c.Request.Context(), tc, appidentity.RegisterInput{
		TenantName: req.TenantName,
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookie(c, result)
	h.Created(c, toAuthResponse(result))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) || !h.onboardingTenant(c, req.TenantID) {
		return
	}
	tc, _ := middleware.GetTenantContext(c)

	result, err := h.auth.Login(c.Request.Context(), tc, appidentity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookie(c, result)
	h.Success(c, toAuthResponse(result))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	sessionID := claims.SessionID
	if sid, err := c.Cookie(h.cookie.CookieName); err == nil && sid != "" {
		sessionID = sid
	}

	err := h.auth.Logout(c.Request.Context(), appidentity.LogoutInput{
		TokenID:   claims.ID,
		TokenTTL:  claims.RemainingTTL(),
		SessionID: sessionID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	h.NoContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	info, err := h.auth.Me(c.Request.Context(), tc, principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(*info))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, r *appidentity.AuthResult) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, r.SessionID, int(r.SessionTTL.Seconds()), "/", h.cookie.Domain, h.cookie.Secure, true)
}

// TenantHandler serves the resolved tenant
type TenantHandler struct {
	BaseHandler
	tenants *appidentity.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants *appidentity.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Get handles GET /tenant
func (h *TenantHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	if middleware.GetPrincipal(c) == nil {
		h.Success(c, TenantResponse{ID: tc.TenantID()})
		return
	}
	info, err := h.tenants.Get(c.Request.Context(), tc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TenantResponse{ID: info.ID, Name: info.Name, CreatedAt: &info.CreatedAt})
}
