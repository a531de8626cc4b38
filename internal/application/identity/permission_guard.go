package identity

import (
	"context"
	"fmt"
	"slices"

	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PermissionGuard decides whether a principal may perform an operation in a tenant
type PermissionGuard struct {
	roles identity.RoleRepository
	guard identity.Guard
}

// NewPermissionGuard creates a guard evaluating permissions under the API guard
func NewPermissionGuard(roles identity.RoleRepository) *PermissionGuard {
	return &PermissionGuard{roles: roles, guard: identity.GuardAPI}
}

// Authorize returns nil when any role of principal grants perm. Denials are
// logged for audit and return shared.ErrPermissionDenied.
func (g *PermissionGuard) Authorize(ctx context.Context, tc shared.TenantContext, principal identity.Principal, perm identity.Permission) error {
	log := logger.FromContext(ctx)
	deny := func(reason string) error {
		fields := []zap.Field{
			zap.String("tenant_id", tc.String()),
			zap.String("permission", perm.String()),
			zap.String("reason", reason),
		}
		if principal != nil {
			fields = append(fields, zap.String("user_id", principal.UserID().String()))
		}
		log.Warn("Permission denied", fields...)
		return shared.ErrPermissionDenied
	}

	if !perm.IsValid() {
		return deny("unknown permission")
	}
	if principal == nil {
		return deny("no principal")
	}
	if tc.IsZero() || principal.TenantID() != tc.TenantID() {
		return deny("principal belongs to another tenant")
	}

	granted, err := g.roles.PermissionsForUser(ctx, tc.TenantID(), principal.UserID(), g.guard)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	if !slices.Contains(granted, perm) {
		return deny("not granted")
	}
	return nil
}

// Permissions lists what principal may do in tc
func (g *PermissionGuard) Permissions(ctx context.Context, tc shared.TenantContext, principal identity.Principal) ([]identity.Permission, error) {
	if principal.TenantID() != tc.TenantID() {
		return nil, nil
	}
	return g.roles.PermissionsForUser(ctx, tc.TenantID(), principal.UserID(), g.guard)
}

// EnsureCatalog stores every permission and the default roles. It runs at startup.
func EnsureCatalog(ctx context.Context, roles identity.RoleRepository, log *zap.Logger) error {
	defs := identity.DefaultRoles()
	if err := roles.EnsureCatalog(ctx, identity.GuardAPI, defs); err != nil {
		return fmt.Errorf("ensure permission catalog: %w", err)
	}
	log.Info("Permission catalog ensured",
		zap.Int("permissions", len(identity.AllPermissions())),
		zap.Int("roles", len(defs)),
	)
	return nil
}
