package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func sellThrough(ctx context.Context, repos uow.Repositories, productID uuid.UUID, qty int64) (*trade.Sale, error) {
	sale, err := trade.NewSale(repos.TenantContext().TenantID(), uuid.New(), trade.SaleHeader{SaleDate: testDay})
	if err != nil {
		return nil, err
	}
	if err := sale.AddItem(productID, qty, decimal.NewFromInt(5)); err != nil {
		return nil, err
	}
	if err := sale.Price(trade.DefaultDiscountPolicy(), trade.DiscountNone, decimal.Zero); err != nil {
		return nil, err
	}
	number, err := repos.Sequences().Next(ctx, trade.DocumentSale, sale.SaleDate)
	if err != nil {
		return nil, err
	}
	sale.Confirm(number)
	if err := repos.Sales().Create(ctx, sale); err != nil {
		return nil, err
	}
	for _, entry := range sale.StockEntries() {
		if _, err := repos.Ledger().Record(ctx, entry); err != nil {
			return nil, err
		}
	}
	repos.RecordEvents(sale.GetDomainEvents()...)
	return sale, nil
}

func TestUnitOfWorkCommitPublishesEvents(t *testing.T) {
	db := newTestDB(t)
	scope := newTestScope(t, db)
	product := seedProduct(t, scope, "Milk", 10, 8)
	pub := &capturePublisher{}
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{TransactionTimeout: time.Second}, WithEventPublisher(pub))

	var sale *trade.Sale
	err := unit.Execute(context.Background(), scope.TenantContext(), func(ctx context.Context, repos uow.Repositories) error {
		var err error
		sale, err = sellThrough(ctx, repos, product.ID, 3)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-20260310-0001", sale.InvoiceNumber)
	assert.ElementsMatch(t, []string{trade.EventTypeSaleCreated, inventory.EventTypeStockBelowThreshold}, pub.types())

	err = unit.Read(context.Background(), scope.TenantContext(), func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.Products().FindByID(context.Background(), product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.Quantity)
		return nil
	})
	require.NoError(t, err)
}

func TestUnitOfWorkRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	scope := newTestScope(t, db)
	product := seedProduct(t, scope, "Bread", 10, 0)
	pub := &capturePublisher{}
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{}, WithEventPublisher(pub))
	boom := errors.New("boom")

	err := unit.Execute(context.Background(), scope.TenantContext(), func(ctx context.Context, repos uow.Repositories) error {
		if _, err := sellThrough(ctx, repos, product.ID, 4); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, pub.events, "nothing is published for a rolled back unit")

	sales, total, err := NewGormSaleRepository(scope).List(context.Background(), trade.SaleFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, sales)

	got, err := NewGormProductRepository(scope).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Len(t, ledgerRows(t, NewInventoryLedger(scope), product.ID), 1)

	// the released number is reused by the next committed sale
	var sale *trade.Sale
	require.NoError(t, unit.Execute(context.Background(), scope.TenantContext(), func(ctx context.Context, repos uow.Repositories) error {
		sale, err = sellThrough(ctx, repos, product.ID, 1)
		return err
	}))
	assert.Equal(t, "INV-20260310-0001", sale.InvoiceNumber)
}

func TestUnitOfWorkOversellRollsBackSale(t *testing.T) {
	db := newTestDB(t)
	scope := newTestScope(t, db)
	product := seedProduct(t, scope, "Eggs", 2, 0)
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{})

	err := unit.Execute(context.Background(), scope.TenantContext(), func(ctx context.Context, repos uow.Repositories) error {
		_, err := sellThrough(ctx, repos, product.ID, 3)
		return err
	})
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.Shortfall())

	_, total, err := NewGormSaleRepository(scope).List(context.Background(), trade.SaleFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUnitOfWorkSurvivesCallerCancellation(t *testing.T) {
	db := newTestDB(t)
	scope := newTestScope(t, db)
	product := seedProduct(t, scope, "Tea", 5, 0)
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{TransactionTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	err := unit.Execute(ctx, scope.TenantContext(), func(txCtx context.Context, repos uow.Repositories) error {
		cancel()
		require.Error(t, ctx.Err())
		assert.NoError(t, txCtx.Err(), "the unit's context outlives the caller's")
		_, hasDeadline := txCtx.Deadline()
		assert.True(t, hasDeadline)
		_, err := sellThrough(txCtx, repos, product.ID, 1)
		return err
	})
	require.NoError(t, err)

	got, err := NewGormProductRepository(scope).FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Quantity)
}

func TestUnitOfWorkTenantsJoinTransaction(t *testing.T) {
	db := newTestDB(t)
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{TransactionTimeout: time.Second})
	tc := shared.MustTenantContext(uuid.New(), shared.TenantSourceOnboarding)
	boom := errors.New("boom")

	ctx, cancel := context.WithCancel(context.Background())
	err := unit.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		cancel()
		row, err := identity.NewTenant(tc.TenantID(), "Kiosk")
		if err != nil {
			return err
		}
		if err := repos.Tenants().Create(ctx, row); err != nil {
			return err
		}
		exists, err := repos.Tenants().Exists(ctx, tc.TenantID())
		if err != nil {
			return err
		}
		if !exists {
			return errors.New("tenant not visible inside its own transaction")
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := NewGormTenantRepository(db).Exists(context.Background(), tc.TenantID())
	require.NoError(t, err)
	assert.False(t, exists, "tenant row rolls back with the unit")
}

func TestUnitOfWorkPublishFailureDoesNotFailCommit(t *testing.T) {
	db := newTestDB(t)
	scope := newTestScope(t, db)
	product := seedProduct(t, scope, "Rice", 5, 0)
	pub := &capturePublisher{err: errors.New("handler down")}
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{}, WithEventPublisher(pub))

	err := unit.Execute(context.Background(), scope.TenantContext(), func(ctx context.Context, repos uow.Repositories) error {
		_, err := sellThrough(ctx, repos, product.ID, 1)
		return err
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pub.types())
}

func TestUnitOfWorkRejectsZeroTenant(t *testing.T) {
	db := newTestDB(t)
	unit := NewGormUnitOfWork(db, testSequenceConfig, config.InventoryConfig{})
	called := false
	err := unit.Execute(context.Background(), shared.TenantContext{}, func(context.Context, uow.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, tenant.ErrTenantContextRequired)
	assert.False(t, called)
}
