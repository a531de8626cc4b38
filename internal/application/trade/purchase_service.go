package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PurchaseService records stock received from suppliers
type PurchaseService struct {
	uow uow.UnitOfWork
	now func() time.Time
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(unit uow.UnitOfWork) *PurchaseService {
	return &PurchaseService{uow: unit, now: time.Now}
}

// checkSupplier verifies the supplier belongs to the tenant
func checkSupplier(ctx context.Context, repos uow.Repositories, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := repos.Suppliers().FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.Invalid("Supplier not found")
		}
		return err
	}
	return nil
}

// Create records a purchase by actor and increments stock for every line
func (s *PurchaseService) Create(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	purchaseDate := s.now()
	if req.PurchaseDate != nil {
		purchaseDate = *req.PurchaseDate
	}
	invoice, err := trade.NewPurchaseInvoice(tc.TenantID(), actor, trade.PurchaseHeader{
		SupplierID:   req.SupplierID,
		PurchaseDate: purchaseDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		if err := checkSupplier(ctx, repos, req.SupplierID); err != nil {
			return err
		}
		for _, item := range req.Items {
			p, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			cost := p.CostPrice
			if item.UnitCost != nil {
				cost = *item.UnitCost
			}
			if err := invoice.AddItem(item.ProductID, item.Quantity, cost); err != nil {
				return err
			}
		}

		number, err := repos.Sequences().Next(ctx, trade.DocumentPurchase, invoice.PurchaseDate)
		if err != nil {
			return err
		}
		if err := invoice.Confirm(number); err != nil {
			return err
		}
		if err := repos.Purchases().Create(ctx, invoice); err != nil {
			return err
		}
		for _, entry := range invoice.StockEntries() {
			if _, err := repos.Ledger().Record(ctx, entry); err != nil {
				return err
			}
		}
		repos.RecordEvents(invoice.GetDomainEvents()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Purchase recorded",
		zap.String("purchase_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	resp := ToPurchaseResponse(invoice)
	return &resp, nil
}

// GetByID retrieves a purchase with its lines
func (s *PurchaseService) GetByID(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*PurchaseResponse, error) {
	var invoice *trade.PurchaseInvoice
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		invoice, err = repos.Purchases().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(invoice)
	return &resp, nil
}

// List retrieves a page of purchase headers
func (s *PurchaseService) List(ctx context.Context, tc shared.TenantContext, q query.ListQuery) (*shared.Paginated[PurchaseResponse], error) {
	f := q.Filter()
	var (
		invoices []trade.PurchaseInvoice
		total    int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		invoices, total, err = repos.Purchases().List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]PurchaseResponse, len(invoices))
	for i := range invoices {
		items[i] = ToPurchaseResponse(&invoices[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// UpdateHeader edits supplier, date and notes of a purchase
func (s *PurchaseService) UpdateHeader(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req UpdatePurchaseRequest) (*PurchaseResponse, error) {
	var invoice *trade.PurchaseInvoice
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		if err := checkSupplier(ctx, repos, req.SupplierID); err != nil {
			return err
		}
		current, err := repos.Purchases().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.UpdateHeader(trade.PurchaseHeader{
			SupplierID:   req.SupplierID,
			PurchaseDate: req.PurchaseDate,
			Notes:        req.Notes,
		}); err != nil {
			return err
		}
		if err := repos.Purchases().UpdateHeader(ctx, current); err != nil {
			return err
		}
		invoice = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(invoice)
	return &resp, nil
}
