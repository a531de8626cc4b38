package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/partner"
	"github.com/storeline/backend/internal/domain/shared"
)

// SupplierService handles supplier CRUD
type SupplierService struct {
	uow uow.UnitOfWork
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(unit uow.UnitOfWork) *SupplierService {
	return &SupplierService{uow: unit}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, tc shared.TenantContext, req SupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.input())
	if err != nil {
		return nil, err
	}
	err = s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Suppliers().Create(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*SupplierResponse, error) {
	var supplier *partner.Supplier
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		supplier, err = repos.Suppliers().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves a page of suppliers
func (s *SupplierService) List(ctx context.Context, tc shared.TenantContext, q query.ListQuery) (*shared.Paginated[SupplierResponse], error) {
	filter := q.Filter()
	var (
		suppliers []partner.Supplier
		total     int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		suppliers, total, err = repos.Suppliers().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		items[i] = ToSupplierResponse(&suppliers[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces the editable fields of a supplier
func (s *SupplierService) Update(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req SupplierRequest) (*SupplierResponse, error) {
	var supplier *partner.Supplier
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		current, err := repos.Suppliers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.Update(req.input()); err != nil {
			return err
		}
		supplier = current
		return repos.Suppliers().Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete soft-deletes a supplier. Documents referring to it are kept.
func (s *SupplierService) Delete(ctx context.Context, tc shared.TenantContext, id uuid.UUID) error {
	return s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Suppliers().Delete(ctx, id)
	})
}
