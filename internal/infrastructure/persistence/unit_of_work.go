package persistence

import (
	"context"
	"time"

	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/partner"
	"github.com/storeline/backend/internal/domain/report"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/config"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormUnitOfWork implements uow.UnitOfWork on a GORM database
type GormUnitOfWork struct {
	db        *gorm.DB
	sequence  config.SequenceConfig
	timeout   time.Duration
	publisher shared.EventPublisher
	observer  RetryObserver
}

var _ uow.UnitOfWork = (*GormUnitOfWork)(nil)

// UnitOfWorkOption configures a GormUnitOfWork
type UnitOfWorkOption func(*GormUnitOfWork)

// WithEventPublisher publishes recorded events after commit
func WithEventPublisher(p shared.EventPublisher) UnitOfWorkOption {
	return func(u *GormUnitOfWork) { u.publisher = p }
}

// WithRetryObserver reports allocator retries, typically to metrics
func WithRetryObserver(o RetryObserver) UnitOfWorkOption {
	return func(u *GormUnitOfWork) { u.observer = o }
}

// NewGormUnitOfWork creates a unit of work factory
func NewGormUnitOfWork(db *gorm.DB, seq config.SequenceConfig, inv config.InventoryConfig, opts ...UnitOfWorkOption) *GormUnitOfWork {
	u := &GormUnitOfWork{db: db, sequence: seq, timeout: inv.TransactionTimeout}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Read runs fn with repositories outside any transaction
func (u *GormUnitOfWork) Read(ctx context.Context, tc shared.TenantContext, fn func(context.Context, uow.Repositories) error) error {
	scope, err := tenant.NewScope(u.db, tc)
	if err != nil {
		return err
	}
	return fn(ctx, u.repositories(ctx, scope))
}

// Execute runs fn in one transaction detached from ctx's cancellation and
// bounded by the configured timeout.
func (u *GormUnitOfWork) Execute(ctx context.Context, tc shared.TenantContext, fn func(context.Context, uow.Repositories) error) error {
	scope, err := tenant.NewScope(u.db, tc)
	if err != nil {
		return err
	}

	txCtx := context.WithoutCancel(ctx)
	if u.timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(txCtx, u.timeout)
		defer cancel()
	}

	var repos *gormRepositories
	err = scope.Transaction(txCtx, func(tx *tenant.Scope) error {
		repos = u.repositories(txCtx, tx)
		return fn(txCtx, repos)
	})
	if err != nil {
		return err
	}

	events := append(repos.events.Events(), repos.ledger.PendingEvents()...)
	if len(events) > 0 && u.publisher != nil {
		if err := u.publisher.Publish(txCtx, events...); err != nil {
			// the transaction is committed; a failed handler must not fail the request
			logger.FromContext(ctx).Error("Failed to publish domain events", zap.Error(err))
		}
	}
	return nil
}

func (u *GormUnitOfWork) repositories(ctx context.Context, scope *tenant.Scope) *gormRepositories {
	return &gormRepositories{
		ctx:       ctx,
		scope:     scope,
		ledger:    NewInventoryLedger(scope),
		sequences: NewSequenceAllocator(scope, u.sequence, u.observer),
	}
}

type gormRepositories struct {
	// ctx is the unit's context: the detached, time-bounded one inside Execute
	ctx       context.Context
	scope     *tenant.Scope
	ledger    *InventoryLedger
	sequences *SequenceAllocator
	events    shared.EventRecorder
}

func (r *gormRepositories) TenantContext() shared.TenantContext { return r.scope.TenantContext() }

func (r *gormRepositories) Tenants() identity.TenantRepository {
	return NewGormTenantRepository(r.scope.Raw(r.ctx))
}

func (r *gormRepositories) Users() identity.UserRepository { return NewGormUserRepository(r.scope) }

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.scope)
}

func (r *gormRepositories) Ledger() inventory.Ledger { return r.ledger }

func (r *gormRepositories) Transactions() inventory.TransactionRepository {
	return NewInventoryTransactionRepository(r.scope)
}

func (r *gormRepositories) Sequences() trade.SequenceAllocator { return r.sequences }

func (r *gormRepositories) Sales() trade.SaleRepository { return NewGormSaleRepository(r.scope) }

func (r *gormRepositories) Purchases() trade.PurchaseRepository {
	return NewGormPurchaseRepository(r.scope)
}

func (r *gormRepositories) Returns() trade.ReturnRepository { return NewGormReturnRepository(r.scope) }

func (r *gormRepositories) Suppliers() partner.SupplierRepository {
	return NewSupplierRepository(r.scope)
}

func (r *gormRepositories) Expenses() finance.ExpenseRepository { return NewExpenseRepository(r.scope) }

func (r *gormRepositories) Reports() report.Reader { return NewGormReportReader(r.scope) }

func (r *gormRepositories) RecordEvents(events ...shared.DomainEvent) { r.events.Record(events...) }
