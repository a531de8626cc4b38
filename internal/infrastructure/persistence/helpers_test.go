package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSequenceConfig = config.SequenceConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

// newTestDB opens a migrated in-memory sqlite database with the tenant guard.
// One connection keeps every session on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, tenant.RegisterGuard(db))
	return db
}

func newTestScope(t *testing.T, db *gorm.DB) *tenant.Scope {
	t.Helper()
	scope, err := tenant.NewScope(db, shared.MustTenantContext(uuid.New(), shared.TenantSourceSystem))
	require.NoError(t, err)
	return scope
}

// seedProduct creates a product and records opening stock through the ledger
func seedProduct(t *testing.T, scope *tenant.Scope, name string, opening, minAlert int64) *catalog.Product {
	t.Helper()
	ctx := context.Background()
	p, err := catalog.NewProduct(catalog.ProductInput{
		Name:          name,
		UnitPrice:     decimal.NewFromInt(5),
		MinStockAlert: minAlert,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(scope).Create(ctx, p))

	if opening > 0 {
		_, err = NewInventoryLedger(scope).Record(ctx, inventory.Entry{
			ProductID:     p.ID,
			Delta:         opening,
			Type:          inventory.TransactionTypeIn,
			ReferenceType: inventory.ReferenceOpening,
			ReferenceID:   p.ID,
		})
		require.NoError(t, err)
		p.Quantity = opening
	}
	return p
}

func outEntry(productID uuid.UUID, qty int64) inventory.Entry {
	return inventory.Entry{
		ProductID:     productID,
		Delta:         -qty,
		Type:          inventory.TransactionTypeOut,
		ReferenceType: inventory.ReferenceSale,
		ReferenceID:   uuid.New(),
	}
}
