package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ReturnService opens and decides customer and supplier returns
type ReturnService struct {
	uow        uow.UnitOfWork
	rejections StockRejectionRecorder
	now        func() time.Time
}

// NewReturnService creates a new ReturnService
func NewReturnService(unit uow.UnitOfWork) *ReturnService {
	return &ReturnService{uow: unit, rejections: nopRejections{}, now: time.Now}
}

// WithStockRejections sets the recorder notified when an approval is refused for stock
func (s *ReturnService) WithStockRejections(r StockRejectionRecorder) *ReturnService {
	if r != nil {
		s.rejections = r
	}
	return s
}

// Create opens a pending return. A customer return may not exceed what the
// sale sold of the product minus what pending and approved returns already hold.
func (s *ReturnService) Create(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, req CreateReturnRequest) (*ReturnResponse, error) {
	ret, err := trade.NewReturn(tc.TenantID(), actor, trade.ReturnInput{
		Kind:       trade.ReturnKind(req.Kind),
		SaleID:     req.SaleID,
		SupplierID: req.SupplierID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
	})
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, ret.ProductID); err != nil {
			return err
		}
		switch ret.Kind {
		case trade.ReturnKindCustomer:
			if err := checkReturnable(ctx, repos, ret); err != nil {
				return err
			}
		case trade.ReturnKindSupplier:
			if err := checkSupplier(ctx, repos, ret.SupplierID); err != nil {
				return err
			}
		}
		return repos.Returns().Create(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Return created",
		zap.String("return_id", ret.ID.String()),
		zap.String("kind", string(ret.Kind)),
		zap.Int64("quantity", ret.Quantity),
	)
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// checkReturnable locks the sale so concurrent returns against it are
// counted one after another
func checkReturnable(ctx context.Context, repos uow.Repositories, ret *trade.Return) error {
	if _, err := repos.Sales().FindByIDForUpdate(ctx, *ret.SaleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.Invalid("Sale not found")
		}
		return err
	}
	sold, err := repos.Sales().SoldQuantity(ctx, *ret.SaleID, ret.ProductID)
	if err != nil {
		return err
	}
	if sold == 0 {
		return shared.Invalid("Product was not sold on this sale")
	}
	returned, err := repos.Returns().ReturnedQuantity(ctx, *ret.SaleID, ret.ProductID)
	if err != nil {
		return err
	}
	if remaining := sold - returned; ret.Quantity > remaining {
		return shared.Invalid(fmt.Sprintf("Return quantity %d exceeds the %d units still returnable on this sale", ret.Quantity, remaining))
	}
	return nil
}

// Approve decides a pending return and records its stock movement in the same transaction
func (s *ReturnService) Approve(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, id uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.decide(ctx, tc, id, func(repos uow.Repositories, r *trade.Return) error {
		if err := r.Approve(actor, s.now()); err != nil {
			return err
		}
		tx, err := repos.Ledger().Record(ctx, r.StockEntry())
		if err != nil {
			return err
		}
		r.LinkTransaction(tx.ID)
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrInsufficientStock) {
			s.rejections.RecordStockRejection(ctx, tc.TenantID())
		}
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// Reject decides a pending return without any stock effect
func (s *ReturnService) Reject(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, id uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.decide(ctx, tc, id, func(_ uow.Repositories, r *trade.Return) error {
		return r.Reject(actor, s.now())
	})
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

func (s *ReturnService) decide(ctx context.Context, tc shared.TenantContext, id uuid.UUID, apply func(uow.Repositories, *trade.Return) error) (*trade.Return, error) {
	log := logger.FromContext(ctx).With(zap.String("return_id", id.String()))
	var ret *trade.Return
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		r, err := repos.Returns().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(repos, r); err != nil {
			return err
		}
		if err := repos.Returns().SaveDecision(ctx, r); err != nil {
			return err
		}
		repos.RecordEvents(r.GetDomainEvents()...)
		ret = r
		return nil
	})
	if err != nil {
		log.Warn("Return decision failed", zap.Error(err))
		return nil, err
	}
	log.Info("Return decided", zap.String("status", string(ret.Status)))
	return ret, nil
}

// GetByID retrieves a return
func (s *ReturnService) GetByID(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*ReturnResponse, error) {
	var ret *trade.Return
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		ret, err = repos.Returns().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// List retrieves a page of returns
func (s *ReturnService) List(ctx context.Context, tc shared.TenantContext, f ReturnListFilter) (*shared.Paginated[ReturnResponse], error) {
	filter := trade.ReturnFilter{
		Filter: f.Filter(),
		Kind:   trade.ReturnKind(f.Kind),
		Status: trade.ReturnStatus(f.Status),
	}
	var (
		rets  []trade.Return
		total int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		rets, total, err = repos.Returns().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]ReturnResponse, len(rets))
	for i := range rets {
		items[i] = ToReturnResponse(&rets[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
