package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
)

// GormProductRepository implements catalog.ProductRepository
type GormProductRepository struct {
	scope *tenant.Scope
	base  *tenant.Repository[catalog.Product]
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository binds the repository to scope
func NewGormProductRepository(scope *tenant.Scope) *GormProductRepository {
	return &GormProductRepository{
		scope: scope,
		base: tenant.NewRepository[catalog.Product](scope, tenant.RepositoryOptions{
			SearchColumns: []string{"name", "sku"},
			SortFields:    tenant.WithCommonSortFields("name", "sku", "unit_price", "quantity", "expiry_date"),
		}),
	}
}

// FindByID finds a product of the tenant
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.base.FindByID(ctx, id)
}

// List returns a page of products
func (r *GormProductRepository) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	return r.base.List(ctx, filter)
}

// Create inserts the product with zero stock
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	p.Quantity = 0
	return r.base.Create(ctx, p)
}

// Update writes the editable fields. Quantity is owned by the ledger.
func (r *GormProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	return r.base.Update(ctx, p, "quantity", "deleted_at")
}

// Delete soft-deletes the product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Delete(ctx, id)
}

// AlertCandidates loads products that may need attention and keeps those the
// domain predicates flag. Expiry windows are per product, so the final
// decision is made in Go rather than in dialect-specific date SQL.
func (r *GormProductRepository) AlertCandidates(ctx context.Context, now time.Time) ([]catalog.Product, error) {
	var rows []catalog.Product
	err := r.scope.DB(ctx).
		Where("quantity <= min_stock_alert OR expiry_date IS NOT NULL").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, p := range rows {
		if p.IsLowStock() || p.IsExpiringSoon(now) || p.IsExpired(now) {
			out = append(out, p)
		}
	}
	return out, nil
}
