package identity

import "github.com/google/uuid"

// Principal is the authenticated caller. Token and session layers provide
// implementations; the authorization core only needs the two identifiers.
type Principal interface {
	UserID() uuid.UUID
	TenantID() uuid.UUID
}

// StaticPrincipal is a Principal built from known identifiers.
type StaticPrincipal struct {
	User   uuid.UUID
	Tenant uuid.UUID
}

// UserID returns the user id
func (p StaticPrincipal) UserID() uuid.UUID { return p.User }

// TenantID returns the tenant the user belongs to
func (p StaticPrincipal) TenantID() uuid.UUID { return p.Tenant }
