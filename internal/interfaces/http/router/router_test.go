package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	appidentity "github.com/storeline/backend/internal/application/identity"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/auth"
	"github.com/storeline/backend/internal/interfaces/http/handler"
	"github.com/storeline/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	claims *auth.Claims
}

func (v stubValidator) Validate(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return v.claims, nil
}

type principalResolver struct{}

func (principalResolver) Resolve(_ context.Context, s appidentity.TenantSignals) (shared.TenantContext, error) {
	if s.Principal == nil {
		return shared.TenantContext{}, shared.ErrTenantNotIdentified
	}
	return shared.NewTenantContext(s.Principal.TenantID(), shared.TenantSourcePrincipal)
}

type denyAll struct{}

func (denyAll) Authorize(context.Context, shared.TenantContext, identity.Principal, identity.Permission) error {
	return shared.ErrPermissionDenied
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func testClaims() *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: uuid.NewString()},
		TenantID:         uuid.New(),
		UserID:           uuid.New(),
		Username:         "cashier",
	}
}

func newTestRouter(t *testing.T, authz middleware.Authorizer, db handler.Pinger) *gin.Engine {
	t.Helper()
	engine := gin.New()
	r := NewRouter(engine, Handlers{Health: handler.NewHealthHandler(db)}, Security{
		Authn:      middleware.JWTConfig{Validator: stubValidator{claims: testClaims()}},
		Tenant:     middleware.TenantConfig{Resolver: principalResolver{}},
		Authorizer: authz,
	})
	require.NoError(t, r.Setup())
	return engine
}

func TestRouteTable_PermissionsMatchEndpoints(t *testing.T) {
	r := NewRouter(gin.New(), Handlers{}, Security{})

	perms := map[string]identity.Permission{}
	for _, g := range r.Groups() {
		for _, route := range g.Routes() {
			perms[route.Method+" "+route.Path] = route.Permission
		}
	}

	expected := map[string]identity.Permission{
		"POST /auth/register":                   "",
		"POST /auth/login":                      "",
		"POST /auth/logout":                     "",
		"GET /auth/me":                          "",
		"GET /tenant":                           "",
		"GET /products":                         identity.PermViewProducts,
		"GET /products/:id":                     identity.PermViewProducts,
		"POST /products":                        identity.PermCreateProducts,
		"PUT /products/:id":                     identity.PermEditProducts,
		"DELETE /products/:id":                  identity.PermDeleteProducts,
		"GET /inventory/transactions":           identity.PermViewInventory,
		"GET /inventory/alerts":                 identity.PermViewInventory,
		"GET /inventory/products/:id/reconcile": identity.PermViewInventory,
		"POST /inventory/products/:id/repair":   identity.PermEditProducts,
		"GET /sales":                            identity.PermViewSales,
		"GET /sales/:id":                        identity.PermViewSales,
		"POST /sales":                           identity.PermCreateSales,
		"PUT /sales/:id":                        identity.PermEditSales,
		"GET /purchases":                        identity.PermViewPurchases,
		"GET /purchases/:id":                    identity.PermViewPurchases,
		"POST /purchases":                       identity.PermCreatePurchases,
		"PUT /purchases/:id":                    identity.PermEditPurchases,
		"GET /returns":                          identity.PermViewReturns,
		"GET /returns/:id":                      identity.PermViewReturns,
		"POST /returns":                         identity.PermCreateReturns,
		"POST /returns/:id/approve":             identity.PermEditReturns,
		"POST /returns/:id/reject":              identity.PermEditReturns,
		"GET /suppliers":                        identity.PermViewSuppliers,
		"GET /suppliers/:id":                    identity.PermViewSuppliers,
		"POST /suppliers":                       identity.PermCreateSuppliers,
		"PUT /suppliers/:id":                    identity.PermEditSuppliers,
		"DELETE /suppliers/:id":                 identity.PermDeleteSuppliers,
		"GET /expenses":                         identity.PermViewExpenses,
		"GET /expenses/:id":                     identity.PermViewExpenses,
		"POST /expenses":                        identity.PermCreateExpenses,
		"PUT /expenses/:id":                     identity.PermEditExpenses,
		"DELETE /expenses/:id":                  identity.PermDeleteExpenses,
		"GET /reports/sales-summary":            identity.PermViewReports,
	}
	assert.Equal(t, expected, perms)
}

func TestSetup_GatedRouteWithoutAuthorizerFails(t *testing.T) {
	r := NewRouter(gin.New(), Handlers{}, Security{})
	err := r.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no authorizer")
}

func TestSetup_UnknownPermissionFails(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("custom", "/custom").Authorize(denyAll{})
	g.GET("", identity.Permission("launch rockets"), func(c *gin.Context) {})

	err := g.RegisterRoutes(engine.Group("/api/v1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown permission")
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		engine := newTestRouter(t, denyAll{}, pinger{})
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("database down", func(t *testing.T) {
		engine := newTestRouter(t, denyAll{}, pinger{err: errors.New("connection refused")})
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
	})
}

func TestProtectedRoutes(t *testing.T) {
	engine := newTestRouter(t, denyAll{}, pinger{})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("permission denied before handler runs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+uuid.NewString(), nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+"good")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, shared.ErrPermissionDenied.Code, body.Error.Code)
	})
}

func TestRouterRegister_CustomGroup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, Handlers{}, Security{Authorizer: denyAll{}}, WithAPIVersion("v2"))

	custom := NewDomainGroup("custom", "/custom")
	custom.GET("/ping", "", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(custom)
	require.NoError(t, r.Setup())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/custom/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "custom", custom.Name())
	assert.Equal(t, "/custom", custom.Prefix())
}
