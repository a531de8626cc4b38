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

// GormPurchaseRepository implements trade.PurchaseRepository
type GormPurchaseRepository struct {
	scope  *tenant.Scope
	base   *tenant.Repository[trade.PurchaseInvoice]
	header *tenant.Repository[trade.PurchaseInvoice]
}

var _ trade.PurchaseRepository = (*GormPurchaseRepository)(nil)

// NewGormPurchaseRepository binds the repository to scope
func NewGormPurchaseRepository(scope *tenant.Scope) *GormPurchaseRepository {
	opts := tenant.RepositoryOptions{
		SearchColumns: []string{"invoice_number"},
		SortFields:    tenant.WithCommonSortFields("purchase_date", "invoice_number", "total"),
		FilterColumns: map[string]bool{"supplier_id": true},
		DateColumn:    "purchase_date",
	}
	header := opts
	opts.Preloads = []string{"Items"}
	return &GormPurchaseRepository{
		scope:  scope,
		base:   tenant.NewRepository[trade.PurchaseInvoice](scope, opts),
		header: tenant.NewRepository[trade.PurchaseInvoice](scope, header),
	}
}

// FindByID loads the invoice with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseInvoice, error) {
	return r.base.FindByID(ctx, id)
}

const purchaseItemsSQL = `SELECT pi.* FROM purchase_items pi
JOIN purchase_invoices p ON p.id = pi.purchase_invoice_id
WHERE p.id = ? AND p.tenant_id = ?
ORDER BY pi.created_at, pi.id`

// ItemsOf loads the lines of an invoice owned by the tenant
func (r *GormPurchaseRepository) ItemsOf(ctx context.Context, invoiceID uuid.UUID) ([]trade.PurchaseItem, error) {
	var items []trade.PurchaseItem
	err := r.scope.Raw(ctx).Raw(purchaseItemsSQL, invoiceID, r.scope.TenantID()).Scan(&items).Error
	return items, err
}

// List returns invoice headers without items
func (r *GormPurchaseRepository) List(ctx context.Context, filter shared.Filter) ([]trade.PurchaseInvoice, int64, error) {
	return r.header.List(ctx, filter)
}

// Create inserts the invoice and its items
func (r *GormPurchaseRepository) Create(ctx context.Context, invoice *trade.PurchaseInvoice) error {
	if err := r.base.Create(ctx, invoice); err != nil {
		if isUniqueViolation(err) {
			return shared.Conflict("Invoice number already used")
		}
		return err
	}
	return nil
}

// UpdateHeader writes supplier, date and notes
func (r *GormPurchaseRepository) UpdateHeader(ctx context.Context, invoice *trade.PurchaseInvoice) error {
	res := r.scope.DB(ctx).Model(&trade.PurchaseInvoice{}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: invoice.ID}).
		Updates(map[string]any{
			"supplier_id":   invoice.SupplierID,
			"purchase_date": invoice.PurchaseDate,
			"notes":         invoice.Notes,
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
