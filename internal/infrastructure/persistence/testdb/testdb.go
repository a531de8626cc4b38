// Package testdb opens migrated in-memory databases for package tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/persistence"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SequenceConfig keeps allocator retries short in tests
var SequenceConfig = config.SequenceConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

// Open returns a migrated sqlite :memory: database with the tenant guard.
// A single connection keeps every session on the same database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, persistence.AutoMigrate(db))
	require.NoError(t, tenant.RegisterGuard(db))
	require.NoError(t, persistence.NewGormRoleRepository(db).EnsureCatalog(context.Background(), identity.GuardAPI, identity.DefaultRoles()))
	return db
}

// UnitOfWork returns a unit of work over db
func UnitOfWork(db *gorm.DB, opts ...persistence.UnitOfWorkOption) *persistence.GormUnitOfWork {
	return persistence.NewGormUnitOfWork(db, SequenceConfig, config.InventoryConfig{TransactionTimeout: 5 * time.Second}, opts...)
}

// Tenant stores a new tenant and returns its context
func Tenant(t testing.TB, db *gorm.DB, name string) shared.TenantContext {
	t.Helper()
	tn, err := identity.NewTenant(uuid.New(), name)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormTenantRepository(db).Create(context.Background(), tn))
	return shared.MustTenantContext(tn.ID, shared.TenantSourceSystem)
}

// User stores an active user of tc holding roles and returns it
func User(t testing.TB, db *gorm.DB, tc shared.TenantContext, username string, roles ...string) *identity.User {
	t.Helper()
	ctx := context.Background()
	scope, err := tenant.NewScope(db, tc)
	require.NoError(t, err)
	u, err := identity.NewUser(tc.TenantID(), username, "", "password123")
	require.NoError(t, err)
	repo := persistence.NewGormUserRepository(scope)
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.AssignRoles(ctx, u.ID, roles...))
	return u
}
