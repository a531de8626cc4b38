package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
)

// Ledger is the single write path for stock. Implementations are bound to one
// tenant and, when used inside a unit of work, to its transaction.
type Ledger interface {
	// Record appends a movement and updates the product's cached quantity in
	// the same transaction. A movement that would take stock below zero fails
	// with *InsufficientStockError and records nothing.
	Record(ctx context.Context, entry Entry) (*InventoryTransaction, error)
	// Reconcile compares the cached quantity with the ledger sum
	Reconcile(ctx context.Context, productID uuid.UUID) (Reconciliation, error)
	// Repair resets the cached quantity to the ledger sum
	Repair(ctx context.Context, productID uuid.UUID) (Reconciliation, error)
}

// TransactionFilter narrows ledger listings
type TransactionFilter struct {
	shared.Filter
	ProductID     *uuid.UUID
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
}

// TransactionRepository reads the ledger. It has no write methods.
type TransactionRepository interface {
	List(ctx context.Context, filter TransactionFilter) ([]InventoryTransaction, int64, error)
	SumForProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

// Reconciliation is the result of comparing the projection with the ledger
type Reconciliation struct {
	ProductID uuid.UUID `json:"product_id"`
	Cached    int64     `json:"cached_quantity"`
	LedgerSum int64     `json:"ledger_quantity"`
	Repaired  bool      `json:"repaired"`
}

// Drift is the cached quantity minus the ledger sum
func (r Reconciliation) Drift() int64 {
	return r.Cached - r.LedgerSum
}

// Consistent reports whether the projection matches the ledger
func (r Reconciliation) Consistent() bool {
	return r.Drift() == 0
}
