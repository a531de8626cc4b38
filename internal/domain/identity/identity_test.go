package identity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

func TestPermissionEnumeration(t *testing.T) {
	all := AllPermissions()
	assert.Len(t, all, 23)

	seen := make(map[Permission]bool)
	for _, p := range all {
		assert.True(t, p.IsValid(), p)
		assert.False(t, seen[p], "duplicate permission %s", p)
		seen[p] = true
	}

	p, err := ParsePermission("delete products")
	require.NoError(t, err)
	assert.Equal(t, PermDeleteProducts, p)

	_, err = ParsePermission("delete product")
	assert.Error(t, err)
	assert.False(t, Permission("view everything").IsValid())
}

func TestAllPermissionsReturnsCopy(t *testing.T) {
	all := AllPermissions()
	all[0] = "mutated"
	assert.Equal(t, PermViewProducts, AllPermissions()[0])
}

func TestRoleGrants(t *testing.T) {
	role, err := NewRole("cashier", GuardAPI)
	require.NoError(t, err)
	role.Permissions = []PermissionRecord{
		{Name: PermCreateSales, GuardName: GuardAPI},
		{Name: PermViewProducts, GuardName: "web"},
	}

	assert.True(t, role.Grants(PermCreateSales))
	assert.False(t, role.Grants(PermViewProducts), "permission under another guard must not count")
	assert.False(t, role.Grants(PermDeleteProducts))
}

func TestNewRoleValidation(t *testing.T) {
	_, err := NewRole("  ", GuardAPI)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewRole("admin", "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestDefaultRoles(t *testing.T) {
	defs := DefaultRoles()
	require.Len(t, defs, 3)

	byName := make(map[string][]Permission)
	for _, d := range defs {
		byName[d.Name] = d.Permissions
	}

	assert.ElementsMatch(t, AllPermissions(), byName[RoleAdmin])
	assert.NotContains(t, byName[RoleManager], PermDeleteProducts)
	assert.NotContains(t, byName[RoleManager], PermDeleteExpenses)
	assert.Contains(t, byName[RoleManager], PermEditReturns)
	assert.Contains(t, byName[RoleCashier], PermCreateSales)
	assert.NotContains(t, byName[RoleCashier], PermDeleteProducts)
}

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("normalizes username and hashes password", func(t *testing.T) {
		u, err := NewUser(tenantID, " Alice.Shop ", "alice@example.com", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, "alice.shop", u.Username)
		assert.Equal(t, tenantID, u.TenantID)
		assert.NotEqual(t, "s3cretpass", u.PasswordHash)
		assert.True(t, u.VerifyPassword("s3cretpass"))
		assert.False(t, u.VerifyPassword("wrong"))
		assert.True(t, u.CanLogin())
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser(tenantID, "alice", "", "short")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects bad username", func(t *testing.T) {
		_, err := NewUser(tenantID, "a b", "", "longenough1")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, err := NewUser(tenantID, "alice", "not-an-email", "longenough1")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("principal carries user and tenant", func(t *testing.T) {
		u, err := NewUser(tenantID, "bob", "", "longenough1")
		require.NoError(t, err)
		p := u.Principal()
		assert.Equal(t, u.ID, p.UserID())
		assert.Equal(t, tenantID, p.TenantID())
	})
}

func TestNewTenant(t *testing.T) {
	_, err := NewTenant(uuid.Nil, "Shop")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewTenant(uuid.New(), "   ")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	id := uuid.New()
	tenant, err := NewTenant(id, " Corner Shop ")
	require.NoError(t, err)
	assert.Equal(t, id, tenant.ID)
	assert.Equal(t, "Corner Shop", tenant.Name)
}
