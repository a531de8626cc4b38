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

// GormReturnRepository implements trade.ReturnRepository
type GormReturnRepository struct {
	scope *tenant.Scope
	base  *tenant.Repository[trade.Return]
}

var _ trade.ReturnRepository = (*GormReturnRepository)(nil)

// NewGormReturnRepository binds the repository to scope
func NewGormReturnRepository(scope *tenant.Scope) *GormReturnRepository {
	return &GormReturnRepository{
		scope: scope,
		base: tenant.NewRepository[trade.Return](scope, tenant.RepositoryOptions{
			SearchColumns: []string{"reason"},
			SortFields:    tenant.WithCommonSortFields("status", "kind", "quantity", "decided_at"),
			FilterColumns: map[string]bool{"kind": true, "status": true, "product_id": true, "sale_id": true},
		}),
	}
}

// FindByID finds a return of the tenant
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Return, error) {
	return r.base.FindByID(ctx, id)
}

// List returns a page of returns
func (r *GormReturnRepository) List(ctx context.Context, filter trade.ReturnFilter) ([]trade.Return, int64, error) {
	f := filter.Filter.Normalize()
	if filter.Kind != "" {
		f.Filters["kind"] = filter.Kind
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	return r.base.List(ctx, f)
}

// Create inserts a pending return
func (r *GormReturnRepository) Create(ctx context.Context, ret *trade.Return) error {
	return r.base.Create(ctx, ret)
}

// SaveDecision persists the decision only while the row is still pending
func (r *GormReturnRepository) SaveDecision(ctx context.Context, ret *trade.Return) error {
	res := r.scope.DB(ctx).Model(&trade.Return{}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: ret.ID}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "status"}, Value: trade.ReturnStatusPending}).
		Updates(map[string]any{
			"status":                   ret.Status,
			"decided_by":               ret.DecidedBy,
			"decided_at":               ret.DecidedAt,
			"inventory_transaction_id": ret.InventoryTransactionID,
			"updated_at":               time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.base.FindByID(ctx, ret.ID); err != nil {
			return err
		}
		return shared.ErrInvalidReturnState
	}
	return nil
}

// ReturnedQuantity sums pending and approved customer returns of productID on saleID
func (r *GormReturnRepository) ReturnedQuantity(ctx context.Context, saleID, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.scope.DB(ctx).Model(&trade.Return{}).
		Where("kind = ? AND sale_id = ? AND product_id = ?", trade.ReturnKindCustomer, saleID, productID).
		Where("status IN ?", []trade.ReturnStatus{trade.ReturnStatusPending, trade.ReturnStatusApproved}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&n).Error
	return n, err
}
