package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm/clause"
)

// InventoryTransactionRepository reads the ledger for one tenant
type InventoryTransactionRepository struct {
	scope *tenant.Scope
	base  *tenant.Repository[inventory.InventoryTransaction]
}

var _ inventory.TransactionRepository = (*InventoryTransactionRepository)(nil)

// NewInventoryTransactionRepository binds the reader to scope
func NewInventoryTransactionRepository(scope *tenant.Scope) *InventoryTransactionRepository {
	return &InventoryTransactionRepository{
		scope: scope,
		base: tenant.NewRepository[inventory.InventoryTransaction](scope, tenant.RepositoryOptions{
			SortFields: tenant.WithCommonSortFields("quantity", "balance_after"),
			FilterColumns: map[string]bool{
				"product_id":     true,
				"reference_type": true,
				"reference_id":   true,
				"type":           true,
			},
		}),
	}
}

// List returns ledger rows, newest first by default
func (r *InventoryTransactionRepository) List(ctx context.Context, filter inventory.TransactionFilter) ([]inventory.InventoryTransaction, int64, error) {
	f := filter.Filter.Normalize()
	if filter.ProductID != nil {
		f.Filters["product_id"] = *filter.ProductID
	}
	if filter.ReferenceType != "" {
		f.Filters["reference_type"] = filter.ReferenceType
	}
	if filter.ReferenceID != nil {
		f.Filters["reference_id"] = *filter.ReferenceID
	}
	return r.base.List(ctx, f)
}

// SumForProduct returns the signed sum of every movement of the product
func (r *InventoryTransactionRepository) SumForProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.scope.DB(ctx).
		Model(&inventory.InventoryTransaction{}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "product_id"}, Value: productID}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return sum, err
}
