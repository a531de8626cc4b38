package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
)

// InventoryService exposes the ledger read side and projection maintenance
type InventoryService struct {
	uow uow.UnitOfWork
	now func() time.Time
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(unit uow.UnitOfWork) *InventoryService {
	return &InventoryService{uow: unit, now: time.Now}
}

// ListTransactions returns a page of ledger rows
func (s *InventoryService) ListTransactions(ctx context.Context, tc shared.TenantContext, f TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	filter := inventory.TransactionFilter{
		Filter:        f.Filter(),
		ReferenceType: inventory.ReferenceType(f.ReferenceType),
	}
	if f.ProductID != "" {
		id, err := uuid.Parse(f.ProductID)
		if err != nil {
			return nil, shared.Invalid("Invalid product ID")
		}
		filter.ProductID = &id
	}
	var (
		rows  []inventory.InventoryTransaction
		total int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		rows, total, err = repos.Transactions().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]TransactionResponse, len(rows))
	for i := range rows {
		items[i] = ToTransactionResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Alerts lists low-stock, expiring-soon and expired products
func (s *InventoryService) Alerts(ctx context.Context, tc shared.TenantContext) (*AlertsResponse, error) {
	now := s.now()
	resp := &AlertsResponse{
		LowStock:     []ProductAlert{},
		ExpiringSoon: []ProductAlert{},
		Expired:      []ProductAlert{},
	}
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		products, err := repos.Products().AlertCandidates(ctx, now)
		if err != nil {
			return err
		}
		for i := range products {
			p := &products[i]
			if p.IsLowStock() {
				resp.LowStock = append(resp.LowStock, toProductAlert(p, now))
			}
			switch {
			case p.IsExpired(now):
				resp.Expired = append(resp.Expired, toProductAlert(p, now))
			case p.IsExpiringSoon(now):
				resp.ExpiringSoon = append(resp.ExpiringSoon, toProductAlert(p, now))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Reconcile compares a product's cached quantity with its ledger sum
func (s *InventoryService) Reconcile(ctx context.Context, tc shared.TenantContext, productID uuid.UUID) (*ReconciliationResponse, error) {
	var result inventory.Reconciliation
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		result, err = repos.Ledger().Reconcile(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toReconciliationResponse(result)
	return &resp, nil
}

// Repair resets a product's cached quantity to its ledger sum
func (s *InventoryService) Repair(ctx context.Context, tc shared.TenantContext, productID uuid.UUID) (*ReconciliationResponse, error) {
	var result inventory.Reconciliation
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		result, err = repos.Ledger().Repair(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toReconciliationResponse(result)
	return &resp, nil
}
