package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Guard names the authentication context roles and permissions are evaluated under.
type Guard string

// GuardAPI is the bearer-token context used by the REST API.
const GuardAPI Guard = "api"

// Permission is a closed set of capability names. Routes may only require
// one of the constants below, so a misspelt permission does not compile.
type Permission string

const (
	PermViewProducts   Permission = "view products"
	PermCreateProducts Permission = "create products"
	PermEditProducts   Permission = "edit products"
	PermDeleteProducts Permission = "delete products"

	PermViewSales   Permission = "view sales"
	PermCreateSales Permission = "create sales"
	PermEditSales   Permission = "edit sales"

	PermViewPurchases   Permission = "view purchases"
	PermCreatePurchases Permission = "create purchases"
	PermEditPurchases   Permission = "edit purchases"

	PermViewInventory Permission = "view inventory"

	PermViewReturns   Permission = "view returns"
	PermCreateReturns Permission = "create returns"
	PermEditReturns   Permission = "edit returns"

	PermViewSuppliers   Permission = "view suppliers"
	PermCreateSuppliers Permission = "create suppliers"
	PermEditSuppliers   Permission = "edit suppliers"
	PermDeleteSuppliers Permission = "delete suppliers"

	PermViewExpenses   Permission = "view expenses"
	PermCreateExpenses Permission = "create expenses"
	PermEditExpenses   Permission = "edit expenses"
	PermDeleteExpenses Permission = "delete expenses"

	PermViewReports Permission = "view reports"
)

var allPermissions = []Permission{
	PermViewProducts, PermCreateProducts, PermEditProducts, PermDeleteProducts,
	PermViewSales, PermCreateSales, PermEditSales,
	PermViewPurchases, PermCreatePurchases, PermEditPurchases,
	PermViewInventory,
	PermViewReturns, PermCreateReturns, PermEditReturns,
	PermViewSuppliers, PermCreateSuppliers, PermEditSuppliers, PermDeleteSuppliers,
	PermViewExpenses, PermCreateExpenses, PermEditExpenses, PermDeleteExpenses,
	PermViewReports,
}

// AllPermissions returns every defined permission in declaration order
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// IsValid reports whether p is a member of the enumeration
func (p Permission) IsValid() bool {
	for _, known := range allPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// String returns the permission name
func (p Permission) String() string {
	return string(p)
}

// ParsePermission converts a stored name back into the enumeration.
func ParsePermission(name string) (Permission, error) {
	p := Permission(name)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown permission %q", name)
	}
	return p, nil
}

// PermissionRecord is the persisted row for a permission under a guard.
// (name, guard_name) is unique.
type PermissionRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      Permission `gorm:"size:100;not null;uniqueIndex:idx_permissions_name_guard"`
	GuardName Guard      `gorm:"size:50;not null;uniqueIndex:idx_permissions_name_guard"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (PermissionRecord) TableName() string {
	return "permissions"
}
