package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements trade.SaleRepository
type GormSaleRepository struct {
	scope  *tenant.Scope
	base   *tenant.Repository[trade.Sale]
	header *tenant.Repository[trade.Sale]
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)

// NewGormSaleRepository binds the repository to scope
func NewGormSaleRepository(scope *tenant.Scope) *GormSaleRepository {
	opts := tenant.RepositoryOptions{
		SearchColumns: []string{"invoice_number", "customer_name"},
		SortFields:    tenant.WithCommonSortFields("sale_date", "invoice_number", "total"),
		FilterColumns: map[string]bool{"created_by": true},
		DateColumn:    "sale_date",
	}
	header := opts
	opts.Preloads = []string{"Items"}
	return &GormSaleRepository{
		scope:  scope,
		base:   tenant.NewRepository[trade.Sale](scope, opts),
		header: tenant.NewRepository[trade.Sale](scope, header),
	}
}

// FindByID loads the sale; items are preloaded through the tenant-checked parent
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.base.FindByID(ctx, id)
}

// FindByIDForUpdate locks the sale header row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.header.FindByIDForUpdate(ctx, id)
}

const saleItemsSQL = `SELECT si.* FROM sale_items si
JOIN sales s ON s.id = si.sale_id
WHERE s.id = ? AND s.tenant_id = ?
ORDER BY si.created_at, si.id`

// ItemsOf loads the lines of a sale owned by the tenant
func (r *GormSaleRepository) ItemsOf(ctx context.Context, saleID uuid.UUID) ([]trade.SaleItem, error) {
	var items []trade.SaleItem
	err := r.scope.Raw(ctx).Raw(saleItemsSQL, saleID, r.scope.TenantID()).Scan(&items).Error
	return items, err
}

// List returns sale headers without items
func (r *GormSaleRepository) List(ctx context.Context, filter trade.SaleFilter) ([]trade.Sale, int64, error) {
	f := filter.Filter.Normalize()
	if filter.CreatedBy != nil {
		f.Filters["created_by"] = *filter.CreatedBy
	}
	return r.header.List(ctx, f)
}

// Create inserts the sale and its items in the caller's transaction
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	if err := r.base.Create(ctx, sale); err != nil {
		if isUniqueViolation(err) {
			return shared.Conflict("Invoice number already used")
		}
		return err
	}
	return nil
}

// UpdateHeader writes the editable header fields only
func (r *GormSaleRepository) UpdateHeader(ctx context.Context, sale *trade.Sale) error {
	res := r.scope.DB(ctx).Model(&trade.Sale{}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: sale.ID}).
		Updates(map[string]any{
			"customer_name": sale.CustomerName,
			"sale_date":     sale.SaleDate,
			"notes":         sale.Notes,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const soldQuantitySQL = `SELECT COALESCE(SUM(si.quantity), 0) FROM sale_items si
JOIN sales s ON s.id = si.sale_id
WHERE s.id = ? AND s.tenant_id = ? AND si.product_id = ?`

// SoldQuantity returns the units of productID on the tenant's sale
func (r *GormSaleRepository) SoldQuantity(ctx context.Context, saleID, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.scope.Raw(ctx).Raw(soldQuantitySQL, saleID, r.scope.TenantID(), productID).Scan(&n).Error
	return n, err
}
