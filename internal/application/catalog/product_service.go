package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	uow uow.UnitOfWork
	now func() time.Time
}

// NewProductService creates a new ProductService
func NewProductService(unit uow.UnitOfWork) *ProductService {
	return &ProductService{uow: unit, now: time.Now}
}

// Create stores a product. Opening stock is recorded as an inbound ledger
// entry in the same transaction, so the product never has quantity without history.
func (s *ProductService) Create(ctx context.Context, tc shared.TenantContext, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.input())
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		if err := repos.Products().Create(ctx, product); err != nil {
			return err
		}
		if req.OpeningStock == 0 {
			return nil
		}
		tx, err := repos.Ledger().Record(ctx, inventory.Entry{
			ProductID:     product.ID,
			Delta:         req.OpeningStock,
			Type:          inventory.TransactionTypeIn,
			ReferenceType: inventory.ReferenceOpening,
			ReferenceID:   product.ID,
		})
		if err != nil {
			return err
		}
		product.Quantity = tx.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.Int64("opening_stock", req.OpeningStock),
	)
	resp := ToProductResponse(product, s.now())
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.Products().FindByID(ctx, id)
		product = p
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.now())
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, tc shared.TenantContext, q query.ListQuery) (*shared.Paginated[ProductResponse], error) {
	filter := q.Filter()
	var (
		products []catalog.Product
		total    int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		products, total, err = repos.Products().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToProductResponses(products, s.now()), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces the editable fields of a product
func (s *ProductService) Update(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		p, err := repos.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Update(req.input()); err != nil {
			return err
		}
		if err := repos.Products().Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.now())
	return &resp, nil
}

// Delete soft-deletes a product. Its ledger history is kept.
func (s *ProductService) Delete(ctx context.Context, tc shared.TenantContext, id uuid.UUID) error {
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}
