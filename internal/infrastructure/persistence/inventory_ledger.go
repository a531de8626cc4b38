package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
)

// applyDeltaSQL is the guarded projection update. The predicate repeats the
// non-negativity check so a stale read can never drive stock below zero.
const applyDeltaSQL = `UPDATE products SET quantity = quantity + ?, updated_at = ?
WHERE id = ? AND tenant_id = ? AND deleted_at IS NULL AND quantity + ? >= 0`

// InventoryLedger is the only code path that changes Product.Quantity
type InventoryLedger struct {
	scope    *tenant.Scope
	products *tenant.Repository[catalog.Product]
	txs      *InventoryTransactionRepository
	events   shared.EventRecorder
}

var _ inventory.Ledger = (*InventoryLedger)(nil)

// NewInventoryLedger binds a ledger to scope
func NewInventoryLedger(scope *tenant.Scope) *InventoryLedger {
	return &InventoryLedger{
		scope:    scope,
		products: tenant.NewRepository[catalog.Product](scope, tenant.RepositoryOptions{}),
		txs:      NewInventoryTransactionRepository(scope),
	}
}

// Record locks the product row, checks the resulting balance, appends the
// transaction and applies the delta to the cached quantity.
func (l *InventoryLedger) Record(ctx context.Context, entry inventory.Entry) (*inventory.InventoryTransaction, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	var (
		recorded *inventory.InventoryTransaction
		product  *catalog.Product
	)
	err := l.scope.Transaction(ctx, func(tx *tenant.Scope) error {
		products := tenant.NewRepository[catalog.Product](tx, tenant.RepositoryOptions{})
		p, err := products.FindByIDForUpdate(ctx, entry.ProductID)
		if err != nil {
			return err
		}

		balance := p.Quantity + entry.Delta
		if balance < 0 {
			return insufficient(p, entry.Delta, p.Quantity)
		}

		row := inventory.NewTransaction(tx.TenantID(), entry, balance)
		if err := tx.DB(ctx).Create(row).Error; err != nil {
			return fmt.Errorf("append inventory transaction: %w", err)
		}

		res := tx.Raw(ctx).Exec(applyDeltaSQL,
			entry.Delta, time.Now().UTC(), p.ID, tx.TenantID(), entry.Delta)
		if res.Error != nil {
			return fmt.Errorf("apply stock delta: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return insufficient(p, entry.Delta, p.Quantity)
		}

		p.Quantity = balance
		recorded, product = row, p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry.Delta < 0 && product.IsLowStock() {
		l.events.Record(inventory.NewStockBelowThresholdEvent(
			l.scope.TenantID(), product.ID, product.Name, product.Quantity, product.MinStockAlert))
	}
	return recorded, nil
}

func insufficient(p *catalog.Product, delta, available int64) error {
	return &inventory.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   -delta,
		Available:   available,
	}
}

// Reconcile compares the cached quantity with the ledger sum
func (l *InventoryLedger) Reconcile(ctx context.Context, productID uuid.UUID) (inventory.Reconciliation, error) {
	p, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return inventory.Reconciliation{}, err
	}
	sum, err := l.txs.SumForProduct(ctx, productID)
	if err != nil {
		return inventory.Reconciliation{}, err
	}
	return inventory.Reconciliation{ProductID: productID, Cached: p.Quantity, LedgerSum: sum}, nil
}

// Repair resets the cached quantity to the ledger sum under the row lock.
// The ledger is never modified.
func (l *InventoryLedger) Repair(ctx context.Context, productID uuid.UUID) (inventory.Reconciliation, error) {
	var result inventory.Reconciliation
	err := l.scope.Transaction(ctx, func(tx *tenant.Scope) error {
		p, err := tenant.NewRepository[catalog.Product](tx, tenant.RepositoryOptions{}).FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		sum, err := NewInventoryTransactionRepository(tx).SumForProduct(ctx, productID)
		if err != nil {
			return err
		}
		result = inventory.Reconciliation{ProductID: productID, Cached: p.Quantity, LedgerSum: sum}
		if result.Consistent() {
			return nil
		}
		err = tx.Raw(ctx).Exec(`UPDATE products SET quantity = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`,
			sum, time.Now().UTC(), productID, tx.TenantID()).Error
		if err != nil {
			return fmt.Errorf("repair stock projection: %w", err)
		}
		result.Repaired = true
		return nil
	})
	if err != nil {
		return inventory.Reconciliation{}, err
	}
	if result.Repaired {
		logger.FromContext(ctx).Warn("Stock projection repaired",
			zap.String("product_id", productID.String()),
			zap.Int64("cached", result.Cached),
			zap.Int64("ledger", result.LedgerSum),
			zap.Int64("drift", result.Drift()),
		)
	}
	return result, nil
}

// PendingEvents returns the threshold events raised by successful records.
// The unit of work publishes them once the surrounding transaction commits.
func (l *InventoryLedger) PendingEvents() []shared.DomainEvent {
	return l.events.Events()
}
