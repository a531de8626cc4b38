package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
)

// Role is a named bundle of permissions under one guard. Roles are global;
// users of any tenant may hold them. (name, guard_name) is unique.
type Role struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name        string             `gorm:"size:100;not null;uniqueIndex:idx_roles_name_guard"`
	GuardName   Guard              `gorm:"size:50;not null;uniqueIndex:idx_roles_name_guard"`
	Permissions []PermissionRecord `gorm:"many2many:role_permissions;joinForeignKey:RoleID;joinReferences:PermissionID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// NewRole creates a role under the given guard
func NewRole(name string, guard Guard) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Invalid("Role name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.Invalid("Role name cannot exceed 100 characters")
	}
	if guard == "" {
		return nil, shared.Invalid("Role guard cannot be empty")
	}
	now := time.Now()
	return &Role{ID: uuid.New(), Name: name, GuardName: guard, CreatedAt: now, UpdatedAt: now}, nil
}

// Grants reports whether the role includes p under its own guard.
func (r *Role) Grants(p Permission) bool {
	for _, rec := range r.Permissions {
		if rec.Name == p && rec.GuardName == r.GuardName {
			return true
		}
	}
	return false
}

// Default role names created at bootstrap
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// RoleDefinition describes a role and the permissions it should carry.
type RoleDefinition struct {
	Name        string
	Permissions []Permission
}

// DefaultRoles returns the bootstrap role set for the API guard.
func DefaultRoles() []RoleDefinition {
	var manager []Permission
	for _, p := range allPermissions {
		if !strings.HasPrefix(string(p), "delete ") {
			manager = append(manager, p)
		}
	}
	return []RoleDefinition{
		{Name: RoleAdmin, Permissions: AllPermissions()},
		{Name: RoleManager, Permissions: manager},
		{Name: RoleCashier, Permissions: []Permission{
			PermViewProducts,
			PermViewSales,
			PermCreateSales,
			PermViewReturns,
			PermCreateReturns,
		}},
	}
}
