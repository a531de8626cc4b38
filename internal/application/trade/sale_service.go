package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// StockRejectionRecorder counts documents refused for lack of stock
type StockRejectionRecorder interface {
	RecordStockRejection(ctx context.Context, tenantID uuid.UUID)
}

type nopRejections struct{}

func (nopRejections) RecordStockRejection(context.Context, uuid.UUID) {}

// NewDiscountPolicy builds the sale pricing policy from configured values
func NewDiscountPolicy(places int32, mode string, maxPercentage float64) (trade.DiscountPolicy, error) {
	p := trade.DiscountPolicy{
		Places:        places,
		Mode:          trade.RoundingMode(mode),
		MaxPercentage: decimal.NewFromFloat(maxPercentage),
	}
	if err := p.Validate(); err != nil {
		return trade.DiscountPolicy{}, fmt.Errorf("invalid sales policy: %w", err)
	}
	return p, nil
}

// SaleService records sales. A sale, its number, its lines and its stock
// movements commit together or not at all.
type SaleService struct {
	uow        uow.UnitOfWork
	policy     trade.DiscountPolicy
	rejections StockRejectionRecorder
	now        func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(unit uow.UnitOfWork, policy trade.DiscountPolicy) *SaleService {
	return &SaleService{uow: unit, policy: policy, rejections: nopRejections{}, now: time.Now}
}

// WithStockRejections sets the recorder notified when a sale is refused for stock
func (s *SaleService) WithStockRejections(r StockRejectionRecorder) *SaleService {
	if r != nil {
		s.rejections = r
	}
	return s
}

// Create records a sale by actor and decrements stock for every line
func (s *SaleService) Create(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	log := logger.FromContext(ctx)
	saleDate := s.now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}
	sale, err := trade.NewSale(tc.TenantID(), actor, trade.SaleHeader{
		CustomerName: req.CustomerName,
		SaleDate:     saleDate,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		for _, item := range req.Items {
			price := item.UnitPrice
			if price == nil {
				p, err := repos.Products().FindByID(ctx, item.ProductID)
				if err != nil {
					return err
				}
				price = &p.UnitPrice
			}
			if err := sale.AddItem(item.ProductID, item.Quantity, *price); err != nil {
				return err
			}
		}
		if err := sale.Price(s.policy, trade.DiscountType(req.DiscountType), req.DiscountValue); err != nil {
			return err
		}

		number, err := repos.Sequences().Next(ctx, trade.DocumentSale, sale.SaleDate)
		if err != nil {
			return err
		}
		sale.Confirm(number)
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}
		for _, entry := range sale.StockEntries() {
			if _, err := repos.Ledger().Record(ctx, entry); err != nil {
				return err
			}
		}
		repos.RecordEvents(sale.GetDomainEvents()...)
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			s.rejections.RecordStockRejection(ctx, tc.TenantID())
			log.Warn("Sale rejected for insufficient stock", zap.Error(err))
		}
		return nil, err
	}

	log.Info("Sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.String("total", sale.Total.String()),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List retrieves a page of sale headers
func (s *SaleService) List(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, f SaleListFilter) (*shared.Paginated[SaleResponse], error) {
	filter := trade.SaleFilter{Filter: f.Filter()}
	if f.Mine {
		filter.CreatedBy = &actor
	}
	var (
		sales []trade.Sale
		total int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		sales, total, err = repos.Sales().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]SaleResponse, len(sales))
	for i := range sales {
		items[i] = ToSaleResponse(&sales[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateHeader edits customer, date and notes of a sale
func (s *SaleService) UpdateHeader(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req UpdateSaleRequest) (*SaleResponse, error) {
	var sale *trade.Sale
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		locked, err := repos.Sales().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := locked.UpdateHeader(trade.SaleHeader{
			CustomerName: req.CustomerName,
			SaleDate:     req.SaleDate,
			Notes:        req.Notes,
		}); err != nil {
			return err
		}
		if err := repos.Sales().UpdateHeader(ctx, locked); err != nil {
			return err
		}
		sale, err = repos.Sales().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}
