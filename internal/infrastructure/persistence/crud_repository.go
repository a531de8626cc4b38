package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/partner"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
)

// CrudRepository adapts tenant.Repository to shared.CrudRepository for
// entities without custom queries.
type CrudRepository[T any] struct {
	base *tenant.Repository[T]
}

// NewCrudRepository binds a CrudRepository to scope
func NewCrudRepository[T any](scope *tenant.Scope, opts tenant.RepositoryOptions) *CrudRepository[T] {
	return &CrudRepository[T]{base: tenant.NewRepository[T](scope, opts)}
}

// FindByID finds an entity of the tenant
func (r *CrudRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.base.FindByID(ctx, id)
}

// List returns a page of entities
func (r *CrudRepository[T]) List(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	return r.base.List(ctx, filter)
}

// Create inserts entity for the tenant
func (r *CrudRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.base.Create(ctx, entity)
}

// Update writes entity
func (r *CrudRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.base.Update(ctx, entity, "deleted_at")
}

// Delete removes the entity
func (r *CrudRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.base.Delete(ctx, id)
}

// NewSupplierRepository returns the supplier repository for scope
func NewSupplierRepository(scope *tenant.Scope) partner.SupplierRepository {
	return NewCrudRepository[partner.Supplier](scope, tenant.RepositoryOptions{
		SearchColumns: []string{"name", "contact_name", "email", "phone"},
		SortFields:    tenant.WithCommonSortFields("name"),
	})
}

// NewExpenseRepository returns the expense repository for scope
func NewExpenseRepository(scope *tenant.Scope) finance.ExpenseRepository {
	return NewCrudRepository[finance.Expense](scope, tenant.RepositoryOptions{
		SearchColumns: []string{"category", "description"},
		SortFields:    tenant.WithCommonSortFields("incurred_on", "amount", "category"),
		FilterColumns: map[string]bool{"category": true},
		DateColumn:    "incurred_on",
	})
}
