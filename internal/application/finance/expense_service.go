package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/shared"
)

// ExpenseService handles expense CRUD
type ExpenseService struct {
	uow uow.UnitOfWork
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(unit uow.UnitOfWork) *ExpenseService {
	return &ExpenseService{uow: unit}
}

// Create records an expense on behalf of actor
func (s *ExpenseService) Create(ctx context.Context, tc shared.TenantContext, actor uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	expense, err := finance.NewExpense(actor, req.input())
	if err != nil {
		return nil, err
	}
	err = s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Expenses().Create(ctx, expense)
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, tc shared.TenantContext, id uuid.UUID) (*ExpenseResponse, error) {
	var expense *finance.Expense
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		expense, err = repos.Expenses().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// List retrieves a page of expenses
func (s *ExpenseService) List(ctx context.Context, tc shared.TenantContext, f ExpenseListFilter) (*shared.Paginated[ExpenseResponse], error) {
	filter := f.Filter()
	if f.Category != "" {
		filter.Filters["category"] = f.Category
	}
	var (
		expenses []finance.Expense
		total    int64
	)
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		expenses, total, err = repos.Expenses().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		items[i] = ToExpenseResponse(&expenses[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces the editable fields of an expense
func (s *ExpenseService) Update(ctx context.Context, tc shared.TenantContext, id uuid.UUID, req ExpenseRequest) (*ExpenseResponse, error) {
	var expense *finance.Expense
	err := s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		current, err := repos.Expenses().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := current.Update(req.input()); err != nil {
			return err
		}
		expense = current
		return repos.Expenses().Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, tc shared.TenantContext, id uuid.UUID) error {
	return s.uow.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Expenses().Delete(ctx, id)
	})
}
