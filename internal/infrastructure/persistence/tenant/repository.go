package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CrossTenantAccessError reports a lookup of an id that exists under another
// tenant. It matches shared.ErrNotFound so callers render a plain 404.
type CrossTenantAccessError struct {
	Table string
	ID    uuid.UUID
}

func (e *CrossTenantAccessError) Error() string {
	return fmt.Sprintf("%s %s belongs to another tenant", e.Table, e.ID)
}

// Is makes the error indistinguishable from a miss for callers
func (e *CrossTenantAccessError) Is(target error) bool {
	return target == shared.ErrNotFound
}

// RepositoryOptions configures listing behaviour
type RepositoryOptions struct {
	// SearchColumns are matched with LIKE against Filter.Search
	SearchColumns []string
	// SortFields whitelists Filter.OrderBy, CommonSortFields when nil
	SortFields map[string]bool
	// Preloads are associations loaded with every read
	Preloads []string
	// FilterColumns whitelists equality filters taken from Filter.Filters
	FilterColumns map[string]bool
	// DateColumn receives Filter.From (inclusive) and Filter.To (exclusive)
	DateColumn string
}

// Repository is the generic tenant-bound repository. T must be a struct whose
// pointer implements shared.TenantOwned.
type Repository[T any] struct {
	scope *Scope
	opts  RepositoryOptions
}

// NewRepository binds a repository for T to scope
func NewRepository[T any](scope *Scope, opts RepositoryOptions) *Repository[T] {
	if opts.SortFields == nil {
		opts.SortFields = CommonSortFields
	}
	return &Repository[T]{scope: scope, opts: opts}
}

// Scope returns the scope the repository is bound to
func (r *Repository[T]) Scope() *Scope {
	return r.scope
}

func (r *Repository[T]) read(ctx context.Context) *gorm.DB {
	db := r.scope.DB(ctx)
	for _, p := range r.opts.Preloads {
		db = db.Preload(p)
	}
	return db
}

// FindByID returns the entity with id, or an error matching shared.ErrNotFound
func (r *Repository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.find(ctx, r.read(ctx), id)
}

// FindByIDForUpdate is FindByID holding a row lock until the transaction ends
func (r *Repository[T]) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.find(ctx, r.read(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository[T]) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var entity T
	err := db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: id}).
		First(&entity).Error
	if err == nil {
		return &entity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, r.missError(ctx, id)
}

// missError probes for the id under any tenant so a foreign-tenant lookup can
// be audited. The caller still only sees a not-found error.
func (r *Repository[T]) missError(ctx context.Context, id uuid.UUID) error {
	var owner struct{ TenantID uuid.UUID }
	var model T
	err := SkipGuard(r.scope.Raw(ctx)).Model(&model).
		Select(Column).
		Where("id = ?", id).
		Limit(1).
		Scan(&owner).Error
	if err != nil || owner.TenantID == uuid.Nil {
		return shared.ErrNotFound
	}

	table := tableOf(r.scope.Raw(ctx), &model)
	logger.FromContext(ctx).Warn("Cross-tenant access attempt",
		zap.String("table", table),
		zap.String("id", id.String()),
		zap.String("tenant_id", r.scope.TenantID().String()),
	)
	return &CrossTenantAccessError{Table: table, ID: id}
}

func tableOf(db *gorm.DB, model any) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil || stmt.Schema == nil {
		return "unknown"
	}
	return stmt.Schema.Table
}

// List returns one page of entities and the total matching the filter
func (r *Repository[T]) List(ctx context.Context, filter shared.Filter) ([]T, int64, error) {
	filter = filter.Normalize()
	query := r.applyFilter(r.scope.DB(ctx).Model(new(T)), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, r.opts.SortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var items []T
	err := r.applyFilter(r.read(ctx), filter).
		Order(fmt.Sprintf("%s %s", orderBy, orderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository[T]) applyFilter(db *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" && len(r.opts.SearchColumns) > 0 {
		like := "%" + strings.ToLower(s) + "%"
		conds := make([]string, len(r.opts.SearchColumns))
		args := make([]any, len(r.opts.SearchColumns))
		for i, col := range r.opts.SearchColumns {
			conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
			args[i] = like
		}
		db = db.Where(strings.Join(conds, " OR "), args...)
	}
	if r.opts.DateColumn != "" {
		col := clause.Column{Table: clause.CurrentTable, Name: r.opts.DateColumn}
		if filter.From != nil {
			db = db.Where(clause.Gte{Column: col, Value: *filter.From})
		}
		if filter.To != nil {
			db = db.Where(clause.Lt{Column: col, Value: *filter.To})
		}
	}
	for key, value := range filter.Filters {
		if r.opts.FilterColumns[key] {
			db = db.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: key}, Value: value})
		}
	}
	return db
}

// Count returns the number of the tenant's rows
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.scope.DB(ctx).Model(new(T)).Count(&n).Error
	return n, err
}

// Create inserts entity owned by the scope's tenant, whatever the caller set
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	owned, ok := any(entity).(shared.TenantOwned)
	if !ok {
		return fmt.Errorf("%T is not tenant-owned", entity)
	}
	owned.AssignTenant(r.scope.TenantID())
	return r.scope.DB(ctx).Create(entity).Error
}

// Update writes every column of entity except the identity columns and any
// listed in omit. Zero rows affected means the row is not visible to the tenant.
func (r *Repository[T]) Update(ctx context.Context, entity *T, omit ...string) error {
	owned, ok := any(entity).(shared.TenantOwned)
	if !ok {
		return fmt.Errorf("%T is not tenant-owned", entity)
	}
	owned.AssignTenant(r.scope.TenantID())
	omitted := append([]string{"id", Column, "created_at", clause.Associations}, omit...)
	result := r.scope.DB(ctx).Model(entity).Select("*").Omit(omitted...).Updates(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the row, softly when T has a DeletedAt field
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.scope.DB(ctx).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: id}).
		Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missError(ctx, id)
	}
	return nil
}
