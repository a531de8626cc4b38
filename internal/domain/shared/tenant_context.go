package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// TenantSource records which request signal produced a TenantContext.
type TenantSource string

const (
	TenantSourceOnboarding TenantSource = "onboarding"
	TenantSourceHeader     TenantSource = "header"
	TenantSourcePrincipal  TenantSource = "principal"
	TenantSourceSession    TenantSource = "session"
	// TenantSourceSystem is used by background jobs and tests that act for a known tenant.
	TenantSourceSystem TenantSource = "system"
)

// TenantContext identifies the tenant of a single request or operation.
// It is an immutable value: the fields are unexported and there are no setters.
type TenantContext struct {
	tenantID uuid.UUID
	source   TenantSource
}

// NewTenantContext builds a TenantContext. The nil UUID is rejected.
func NewTenantContext(tenantID uuid.UUID, source TenantSource) (TenantContext, error) {
	if tenantID == uuid.Nil {
		return TenantContext{}, ErrTenantNotIdentified
	}
	return TenantContext{tenantID: tenantID, source: source}, nil
}

// MustTenantContext is NewTenantContext for callers holding a known-good id.
func MustTenantContext(tenantID uuid.UUID, source TenantSource) TenantContext {
	tc, err := NewTenantContext(tenantID, source)
	if err != nil {
		panic(fmt.Sprintf("invalid tenant context: %v", err))
	}
	return tc
}

// TenantID returns the tenant identifier
func (tc TenantContext) TenantID() uuid.UUID {
	return tc.tenantID
}

// Source returns the signal the tenant was resolved from
func (tc TenantContext) Source() TenantSource {
	return tc.source
}

// IsZero reports whether tc was never resolved
func (tc TenantContext) IsZero() bool {
	return tc.tenantID == uuid.Nil
}

func (tc TenantContext) String() string {
	return tc.tenantID.String()
}

type tenantContextKey struct{}

// WithTenantContext attaches tc to a request-scoped context.
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// TenantContextFrom returns the TenantContext attached to ctx.
func TenantContextFrom(ctx context.Context) (TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey{}).(TenantContext)
	if !ok || tc.IsZero() {
		return TenantContext{}, false
	}
	return tc, true
}
