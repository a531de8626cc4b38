package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository reads and creates tenants. Tenants are not tenant-owned rows.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, tenant *Tenant) error
}

// UserRepository is always used through a tenant scope, so every method is
// implicitly restricted to the scope's tenant.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *User) error
	AssignRoles(ctx context.Context, userID uuid.UUID, roleNames ...string) error
	RecordLogin(ctx context.Context, user *User) error
}

// RoleRepository serves the permission guard and bootstrap.
type RoleRepository interface {
	// PermissionsForUser returns the distinct permissions granted to the user
	// through any of its roles under guard. tenantID must own the user.
	PermissionsForUser(ctx context.Context, tenantID, userID uuid.UUID, guard Guard) ([]Permission, error)
	// EnsureCatalog idempotently stores every permission and role definition.
	EnsureCatalog(ctx context.Context, guard Guard, roles []RoleDefinition) error
}
