//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/migration"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL, applies migrations/ and returns
// a guarded GORM handle.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storeline_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migration.New(sqlDB, filepath.Join("..", "..", "..", "migrations"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	pool, err := db.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(30)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, tenant.RegisterGuard(db))
	return db
}

func newPostgresScope(t *testing.T, db *gorm.DB) *tenant.Scope {
	t.Helper()
	tn, err := identity.NewTenant(uuid.New(), "Shop "+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, NewGormTenantRepository(db).Create(context.Background(), tn))
	scope, err := tenant.NewScope(db, shared.MustTenantContext(tn.ID, shared.TenantSourceSystem))
	require.NoError(t, err)
	return scope
}

func TestPostgresConcurrentNumbering(t *testing.T) {
	db := newPostgresDB(t)
	scope := newPostgresScope(t, db)
	alloc := NewSequenceAllocator(scope, testSequenceConfig, nil)

	const workers = 40
	numbers := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numbers[i], errs[i] = alloc.Next(context.Background(), trade.DocumentSale, testDay)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], "duplicate %s", numbers[i])
		seen[numbers[i]] = true
	}
	for n := 1; n <= workers; n++ {
		assert.True(t, seen[fmt.Sprintf("INV-20260310-%04d", n)], "missing number %d", n)
	}
}

func TestPostgresConcurrentSalesNeverOversell(t *testing.T) {
	db := newPostgresDB(t)
	scope := newPostgresScope(t, db)
	product := seedProduct(t, scope, "Flour", 10, 0)
	ledger := NewInventoryLedger(scope)

	const buyers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, short := 0, 0
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Record(context.Background(), outEntry(product.ID, 3))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrInsufficientStock):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, buyers-3, short)

	rec, err := ledger.Reconcile(context.Background(), product.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
	assert.Equal(t, int64(1), rec.Cached)
}

func TestPostgresLedgerTriggerRejectsChanges(t *testing.T) {
	db := newPostgresDB(t)
	scope := newPostgresScope(t, db)
	product := seedProduct(t, scope, "Salt", 4, 0)

	err := scope.Raw(context.Background()).
		Exec("UPDATE inventory_transactions SET quantity = 99 WHERE product_id = ?", product.ID).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	err = scope.Raw(context.Background()).
		Exec("DELETE FROM inventory_transactions WHERE product_id = ?", product.ID).Error
	require.Error(t, err)
}

func TestPostgresSaleItemsStayInTenant(t *testing.T) {
	db := newPostgresDB(t)
	scopeA := newPostgresScope(t, db)
	scopeB := newPostgresScope(t, db)
	product := seedProduct(t, scopeA, "Oil", 5, 0)

	sale, err := trade.NewSale(scopeA.TenantID(), uuid.New(), trade.SaleHeader{SaleDate: testDay})
	require.NoError(t, err)
	require.NoError(t, sale.AddItem(product.ID, 2, decimal.NewFromInt(3)))
	require.NoError(t, sale.Price(trade.DefaultDiscountPolicy(), trade.DiscountNone, decimal.Zero))
	sale.Confirm("INV-20260310-0001")
	require.NoError(t, NewGormSaleRepository(scopeA).Create(context.Background(), sale))

	items, err := NewGormSaleRepository(scopeB).ItemsOf(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = NewGormSaleRepository(scopeB).FindByID(context.Background(), sale.ID)
	var crossErr *tenant.CrossTenantAccessError
	assert.ErrorAs(t, err, &crossErr)

	rows, _, err := NewInventoryTransactionRepository(scopeA).List(context.Background(), inventory.TransactionFilter{
		Filter:    shared.DefaultFilter(),
		ProductID: &product.ID,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
