package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTenantRepository implements identity.TenantRepository. Tenants are the
// root of isolation and are not themselves tenant-scoped.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var t identity.Tenant
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Exists reports whether the tenant is known
func (r *GormTenantRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identity.Tenant{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Create inserts the tenant
func (r *GormTenantRepository) Create(ctx context.Context, t *identity.Tenant) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.Conflict("Tenant already exists")
		}
		return err
	}
	return nil
}

// GormUserRepository implements identity.UserRepository for one tenant
type GormUserRepository struct {
	scope *tenant.Scope
	base  *tenant.Repository[identity.User]
}

// NewGormUserRepository binds the repository to scope
func NewGormUserRepository(scope *tenant.Scope) *GormUserRepository {
	return &GormUserRepository{
		scope: scope,
		base:  tenant.NewRepository[identity.User](scope, tenant.RepositoryOptions{Preloads: []string{"Roles"}}),
	}
}

// FindByID loads the user and its roles
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.base.FindByID(ctx, id)
}

// FindByUsername loads a user of the tenant by its normalized username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var u identity.User
	err := r.scope.DB(ctx).Preload("Roles").
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByUsername checks the username within the tenant
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.scope.DB(ctx).Model(&identity.User{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&n).Error
	return n > 0, err
}

// Create inserts the user into the scope's tenant
func (r *GormUserRepository) Create(ctx context.Context, u *identity.User) error {
	if err := r.base.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return shared.Conflict("Username is already taken")
		}
		return err
	}
	return nil
}

type userRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (userRole) TableName() string { return "user_roles" }

// AssignRoles links the user to the named roles under the API guard
func (r *GormUserRepository) AssignRoles(ctx context.Context, userID uuid.UUID, roleNames ...string) error {
	if len(roleNames) == 0 {
		return nil
	}
	// the user must be visible to this tenant before roles are linked
	if _, err := r.base.FindByID(ctx, userID); err != nil {
		return err
	}

	var roles []identity.Role
	err := r.scope.Raw(ctx).
		Where("name IN ? AND guard_name = ?", roleNames, identity.GuardAPI).
		Find(&roles).Error
	if err != nil {
		return err
	}
	if len(roles) != len(roleNames) {
		return shared.Invalid(fmt.Sprintf("unknown role in %v", roleNames))
	}

	links := make([]userRole, len(roles))
	for i, role := range roles {
		links[i] = userRole{UserID: userID, RoleID: role.ID}
	}
	return r.scope.Raw(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// RecordLogin stores the last login timestamp
func (r *GormUserRepository) RecordLogin(ctx context.Context, u *identity.User) error {
	return r.scope.DB(ctx).Model(&identity.User{}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: u.ID}).
		Update("last_login_at", u.LastLoginAt).Error
}

// GormRoleRepository implements identity.RoleRepository. Roles and
// permissions are global tables.
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

const permissionsForUserSQL = `SELECT DISTINCT p.name
FROM users u
JOIN user_roles ur ON ur.user_id = u.id
JOIN roles r ON r.id = ur.role_id AND r.guard_name = ?
JOIN role_permissions rp ON rp.role_id = r.id
JOIN permissions p ON p.id = rp.permission_id AND p.guard_name = ?
WHERE u.id = ? AND u.tenant_id = ? AND u.status = ?`

// PermissionsForUser resolves the user's permissions in one join. A user
// outside tenantID or not active yields no permissions.
func (r *GormRoleRepository) PermissionsForUser(ctx context.Context, tenantID, userID uuid.UUID, guard identity.Guard) ([]identity.Permission, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Raw(permissionsForUserSQL, guard, guard, userID, tenantID, identity.UserStatusActive).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}
	perms := make([]identity.Permission, 0, len(names))
	for _, name := range names {
		// rows outside the enumeration are ignored rather than trusted
		if p, err := identity.ParsePermission(name); err == nil {
			perms = append(perms, p)
		}
	}
	return perms, nil
}

type rolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (rolePermission) TableName() string { return "role_permissions" }

// EnsureCatalog upserts every permission and the given roles with their
// grants. Existing grants are kept, so running it twice changes nothing.
func (r *GormRoleRepository) EnsureCatalog(ctx context.Context, guard identity.Guard, roles []identity.RoleDefinition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nameGuard := []clause.Column{{Name: "name"}, {Name: "guard_name"}}

		for _, p := range identity.AllPermissions() {
			rec := identity.PermissionRecord{ID: uuid.New(), Name: p, GuardName: guard}
			if err := tx.Clauses(clause.OnConflict{Columns: nameGuard, DoNothing: true}).Create(&rec).Error; err != nil {
				return fmt.Errorf("upsert permission %q: %w", p, err)
			}
		}

		var records []identity.PermissionRecord
		if err := tx.Where("guard_name = ?", guard).Find(&records).Error; err != nil {
			return err
		}
		permIDs := make(map[identity.Permission]uuid.UUID, len(records))
		for _, rec := range records {
			permIDs[rec.Name] = rec.ID
		}

		for _, def := range roles {
			role, err := identity.NewRole(def.Name, guard)
			if err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{Columns: nameGuard, DoNothing: true}).
				Create(role).Error; err != nil {
				return fmt.Errorf("upsert role %q: %w", def.Name, err)
			}
			var stored identity.Role
			if err := tx.Where("name = ? AND guard_name = ?", def.Name, guard).First(&stored).Error; err != nil {
				return err
			}

			grants := make([]rolePermission, 0, len(def.Permissions))
			for _, p := range def.Permissions {
				grants = append(grants, rolePermission{RoleID: stored.ID, PermissionID: permIDs[p]})
			}
			if len(grants) == 0 {
				continue
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error; err != nil {
				return fmt.Errorf("grant permissions to %q: %w", def.Name, err)
			}
		}
		return nil
	})
}
