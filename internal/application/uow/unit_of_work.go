// Package uow defines the transactional boundary application services run in.
package uow

import (
	"context"

	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/identity"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/partner"
	"github.com/storeline/backend/internal/domain/report"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
)

// UnitOfWork hands out repositories bound to one tenant.
//
// Execute runs fn inside a single database transaction: the document row, its
// number, its lines and every ledger entry commit or roll back together. fn
// receives the unit's context, which keeps the caller's values but not its
// cancellation and is bounded by the transaction timeout; repository calls
// inside fn must use it. Events recorded during fn are published only after
// commit.
type UnitOfWork interface {
	Read(ctx context.Context, tc shared.TenantContext, fn func(ctx context.Context, repos Repositories) error) error
	Execute(ctx context.Context, tc shared.TenantContext, fn func(ctx context.Context, repos Repositories) error) error
}

// Repositories are bound to the unit's tenant and, inside Execute, to its transaction.
type Repositories interface {
	TenantContext() shared.TenantContext

	// Tenants reads and creates tenant rows inside the unit's transaction
	Tenants() identity.TenantRepository
	Users() identity.UserRepository
	Products() catalog.ProductRepository
	Ledger() inventory.Ledger
	Transactions() inventory.TransactionRepository
	Sequences() trade.SequenceAllocator
	Sales() trade.SaleRepository
	Purchases() trade.PurchaseRepository
	Returns() trade.ReturnRepository
	Suppliers() partner.SupplierRepository
	Expenses() finance.ExpenseRepository
	Reports() report.Reader

	// RecordEvents queues events for publication after a successful commit
	RecordEvents(events ...shared.DomainEvent)
}
