package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/interfaces/http/handler"
	"github.com/storeline/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup) error
}

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth      *handler.AuthHandler
	Tenant    *handler.TenantHandler
	Product   *handler.ProductHandler
	Inventory *handler.InventoryHandler
	Sale      *handler.SaleHandler
	Purchase  *handler.PurchaseHandler
	Return    *handler.ReturnHandler
	Supplier  *handler.SupplierHandler
	Expense   *handler.ExpenseHandler
	Report    *handler.ReportHandler
	Health    *handler.HealthHandler
}

// Security carries the middleware configuration shared by the API groups
type Security struct {
	Authn      middleware.JWTConfig
	Tenant     middleware.TenantConfig
	Authorizer middleware.Authorizer
	// AuthLimiter throttles register and login per client IP; nil disables it
	AuthLimiter *middleware.RateLimiter
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	handlers   Handlers
	security   Security
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, handlers Handlers, security Security, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		handlers:   handlers,
		security:   security,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers the health check and every API group with the engine
func (r *Router) Setup() error {
	if r.handlers.Health != nil {
		r.engine.GET("/health", r.handlers.Health.Check)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, g := range r.Groups() {
		if err := g.RegisterRoutes(api); err != nil {
			return err
		}
	}
	for _, registrar := range r.registrars {
		if err := registrar.RegisterRoutes(api); err != nil {
			return err
		}
	}
	return nil
}

// Groups builds the API route table
func (r *Router) Groups() []*DomainGroup {
	h := r.handlers
	sec := r.security

	optional := sec.Authn
	optional.Optional = true

	protected := func(name, prefix string) *DomainGroup {
		return NewDomainGroup(name, prefix).
			Authorize(sec.Authorizer).
			Use(middleware.Authenticate(sec.Authn), middleware.ResolveTenant(sec.Tenant), middleware.SpanAttributes())
	}

	onboarding := NewDomainGroup("onboarding", "/auth")
	if sec.AuthLimiter != nil {
		onboarding.Use(middleware.RateLimit(sec.AuthLimiter))
	}
	onboarding.POST("/register", "", h.Auth.Register).
		POST("/login", "", h.Auth.Login)

	session := NewDomainGroup("session", "/auth").
		Use(middleware.Authenticate(sec.Authn), middleware.ResolveTenant(sec.Tenant), middleware.SpanAttributes())
	session.POST("/logout", "", h.Auth.Logout).
		GET("/me", "", h.Auth.Me)

	tenant := NewDomainGroup("tenant", "/tenant").
		Use(middleware.Authenticate(optional), middleware.ResolveTenant(sec.Tenant))
	tenant.GET("", "", h.Tenant.Get)

	products := protected("products", "/products")
	products.GET("", identity.PermViewProducts, h.Product.List).
		GET("/:id", identity.PermViewProducts, h.Product.Get).
		POST("", identity.PermCreateProducts, h.Product.Create).
		PUT("/:id", identity.PermEditProducts, h.Product.Update).
		DELETE("/:id", identity.PermDeleteProducts, h.Product.Delete)

	inventory := protected("inventory", "/inventory")
	inventory.GET("/transactions", identity.PermViewInventory, h.Inventory.ListTransactions).
		GET("/alerts", identity.PermViewInventory, h.Inventory.Alerts).
		GET("/products/:id/reconcile", identity.PermViewInventory, h.Inventory.Reconcile).
		POST("/products/:id/repair", identity.PermEditProducts, h.Inventory.Repair)

	sales := protected("sales", "/sales")
	sales.GET("", identity.PermViewSales, h.Sale.List).
		GET("/:id", identity.PermViewSales, h.Sale.Get).
		POST("", identity.PermCreateSales, h.Sale.Create).
		PUT("/:id", identity.PermEditSales, h.Sale.Update)

	purchases := protected("purchases", "/purchases")
	purchases.GET("", identity.PermViewPurchases, h.Purchase.List).
		GET("/:id", identity.PermViewPurchases, h.Purchase.Get).
		POST("", identity.PermCreatePurchases, h.Purchase.Create).
		PUT("/:id", identity.PermEditPurchases, h.Purchase.Update)

	returns := protected("returns", "/returns")
	returns.GET("", identity.PermViewReturns, h.Return.List).
		GET("/:id", identity.PermViewReturns, h.Return.Get).
		POST("", identity.PermCreateReturns, h.Return.Create).
		POST("/:id/approve", identity.PermEditReturns, h.Return.Approve).
		POST("/:id/reject", identity.PermEditReturns, h.Return.Reject)

	suppliers := protected("suppliers", "/suppliers")
	suppliers.GET("", identity.PermViewSuppliers, h.Supplier.List).
		GET("/:id", identity.PermViewSuppliers, h.Supplier.Get).
		POST("", identity.PermCreateSuppliers, h.Supplier.Create).
		PUT("/:id", identity.PermEditSuppliers, h.Supplier.Update).
		DELETE("/:id", identity.PermDeleteSuppliers, h.Supplier.Delete)

	expenses := protected("expenses", "/expenses")
	expenses.GET("", identity.PermViewExpenses, h.Expense.List).
		GET("/:id", identity.PermViewExpenses, h.Expense.Get).
		POST("", identity.PermCreateExpenses, h.Expense.Create).
		PUT("/:id", identity.PermEditExpenses, h.Expense.Update).
		DELETE("/:id", identity.PermDeleteExpenses, h.Expense.Delete)

	reports := protected("reports", "/reports")
	reports.GET("/sales-summary", identity.PermViewReports, h.Report.SalesSummary)

	return []*DomainGroup{
		onboarding, session, tenant,
		products, inventory, sales, purchases, returns, suppliers, expenses, reports,
	}
}

// DomainGroup is a route group whose routes may each require a permission
type DomainGroup struct {
	name       string
	prefix     string
	authz      middleware.Authorizer
	middleware []gin.HandlerFunc
	routes     []routeDefinition
}

type routeDefinition struct {
	method     string
	path       string
	permission identity.Permission
	handlers   []gin.HandlerFunc
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Method     string
	Path       string
	Permission identity.Permission
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Authorize sets the authorizer consulted for permission-gated routes
func (dg *DomainGroup) Authorize(authz middleware.Authorizer) *DomainGroup {
	dg.authz = authz
	return dg
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route. An empty perm leaves the route ungated.
func (dg *DomainGroup) Handle(method, path string, perm identity.Permission, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:     method,
		path:       path,
		permission: perm,
		handlers:   handlers,
	})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, perm identity.Permission, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, perm, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, perm identity.Permission, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, perm, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, perm identity.Permission, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, perm, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, perm identity.Permission, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, perm, handlers...)
}

// RegisterRoutes implements RouteRegistrar. Gated routes get RequirePermission
// in front of their handlers; a gated route without an authorizer or with an
// unknown permission is a wiring error.
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) error {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		chain := route.handlers
		if route.permission != "" {
			if !route.permission.IsValid() {
				return fmt.Errorf("route %s %s%s: unknown permission %q", route.method, dg.prefix, route.path, route.permission)
			}
			if dg.authz == nil {
				return fmt.Errorf("route %s %s%s requires %q but group %s has no authorizer",
					route.method, dg.prefix, route.path, route.permission, dg.name)
			}
			chain = append([]gin.HandlerFunc{middleware.RequirePermission(dg.authz, route.permission)}, route.handlers...)
		}
		group.Handle(route.method, route.path, chain...)
	}
	return nil
}

// Routes lists the group's routes with their full relative paths
func (dg *DomainGroup) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(dg.routes))
	for _, route := range dg.routes {
		out = append(out, RouteInfo{Method: route.method, Path: dg.prefix + route.path, Permission: route.permission})
	}
	return out
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
