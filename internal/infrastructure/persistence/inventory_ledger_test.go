package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerRows(t *testing.T, l *InventoryLedger, productID uuid.UUID) []inventory.InventoryTransaction {
	t.Helper()
	rows, _, err := l.txs.List(context.Background(), inventory.TransactionFilter{
		Filter:    shared.DefaultFilter(),
		ProductID: &productID,
	})
	require.NoError(t, err)
	return rows
}

func TestLedgerRecord(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := newTestScope(t, db)
	p := seedProduct(t, scope, "Rice 5kg", 10, 2)
	ledger := NewInventoryLedger(scope)

	tx, err := ledger.Record(ctx, outEntry(p.ID, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), tx.Quantity)
	assert.Equal(t, int64(7), tx.BalanceAfter)

	stored, err := NewGormProductRepository(scope).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.Quantity)

	sum, err := ledger.txs.SumForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Quantity, sum)
	assert.Empty(t, ledger.PendingEvents())
}

func TestLedgerRejectsNegativeStock(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := newTestScope(t, db)
	p := seedProduct(t, scope, "Olive oil", 4, 0)
	ledger := NewInventoryLedger(scope)

	_, err := ledger.Record(ctx, outEntry(p.ID, 6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	var stockErr *inventory.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, "Olive oil", stockErr.ProductName)
	assert.Equal(t, int64(6), stockErr.Requested)
	assert.Equal(t, int64(4), stockErr.Available)
	assert.Equal(t, int64(2), stockErr.Shortfall())

	stored, err := NewGormProductRepository(scope).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stored.Quantity)
	assert.Len(t, ledgerRows(t, ledger, p.ID), 1, "only the opening entry exists")
}

func TestLedgerConcurrentSalesNeverOversell(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := newTestScope(t, db)
	p := seedProduct(t, scope, "Coffee beans", 10, 0)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := NewInventoryLedger(scope).Record(ctx, outEntry(p.ID, 6))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	rec, err := NewInventoryLedger(scope).Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.Cached)
	assert.True(t, rec.Consistent())
}

func TestLedgerIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := newTestScope(t, db)
	other := newTestScope(t, db)
	p := seedProduct(t, owner, "Tea", 5, 0)

	_, err := NewInventoryLedger(other).Record(ctx, outEntry(p.ID, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	stored, err := NewGormProductRepository(owner).FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Quantity)
}

func TestLedgerThresholdEvent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := newTestScope(t, db)
	p := seedProduct(t, scope, "Milk", 5, 3)
	ledger := NewInventoryLedger(scope)

	_, err := ledger.Record(ctx, outEntry(p.ID, 1))
	require.NoError(t, err)
	assert.Empty(t, ledger.PendingEvents())

	_, err = ledger.Record(ctx, outEntry(p.ID, 2))
	require.NoError(t, err)
	events := ledger.PendingEvents()
	require.Len(t, events, 1)
	ev, ok := events[0].(*inventory.StockBelowThresholdEvent)
	require.True(t, ok)
	assert.Equal(t, int64(2), ev.Quantity)
	assert.Equal(t, int64(3), ev.Threshold)
	assert.Equal(t, scope.TenantID(), ev.TenantID())
}

func TestLedgerReconcileAndRepair(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := newTestScope(t, db)
	p := seedProduct(t, scope, "Flour", 8, 0)
	ledger := NewInventoryLedger(scope)

	// simulate a projection written outside the ledger
	require.NoError(t, db.Exec(`UPDATE products SET quantity = 11 WHERE id = ?`, p.ID).Error)

	rec, err := ledger.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), rec.Cached)
	assert.Equal(t, int64(8), rec.LedgerSum)
	assert.Equal(t, int64(3), rec.Drift())
	assert.False(t, rec.Repaired)

	rec, err = ledger.Repair(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Repaired)

	rec, err = ledger.Reconcile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent())
	assert.Equal(t, int64(8), rec.Cached)
	assert.Len(t, ledgerRows(t, ledger, p.ID), 1, "repair never writes the ledger")

	rec, err = ledger.Repair(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, rec.Repaired)
}

func TestLedgerRowsAreImmutable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := newTestScope(t, db)
	p := seedProduct(t, scope, "Salt", 3, 0)
	ledger := NewInventoryLedger(scope)
	row := ledgerRows(t, ledger, p.ID)[0]

	err := scope.DB(ctx).Model(&row).Update("quantity", 100).Error
	assert.ErrorIs(t, err, inventory.ErrLedgerImmutable)

	err = scope.DB(ctx).Delete(&row).Error
	assert.ErrorIs(t, err, inventory.ErrLedgerImmutable)

	assert.Equal(t, int64(3), ledgerRows(t, ledger, p.ID)[0].Quantity)
}

func TestLedgerValidatesEntry(t *testing.T) {
	db := newTestDB(t)
	scope := newTestScope(t, db)
	_, err := NewInventoryLedger(scope).Record(context.Background(), inventory.Entry{ProductID: uuid.New()})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
