// Package tenant binds GORM access to a single tenant.
//
// A Scope is constructed from an explicit shared.TenantContext and is the only
// way repositories reach tenant-owned tables. The guard callback registered by
// RegisterGuard verifies at execution time that every query, update and delete
// on a model with a tenant_id column carries a tenant predicate; it never adds
// one itself.
//
// Usage:
//
//	scope, err := tenant.NewScope(db, tc)
//	products := tenant.NewRepository[catalog.Product](scope, tenant.RepositoryOptions{})
//	p, err := products.FindByID(ctx, id) // WHERE "products"."tenant_id" = tc AND id = ?
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant discriminator column on every tenant-owned table
const Column = "tenant_id"

// ErrTenantContextRequired is returned when a scope is built without a resolved tenant
var ErrTenantContextRequired = errors.New("tenant context is required to access tenant data")

// Scope is a tenant-bound database handle. It is immutable and safe to share
// between goroutines; Transaction yields a new Scope bound to the transaction.
type Scope struct {
	db   *gorm.DB
	tc   shared.TenantContext
	inTx bool
}

// NewScope binds db to the tenant in tc
func NewScope(db *gorm.DB, tc shared.TenantContext) (*Scope, error) {
	if db == nil {
		return nil, errors.New("tenant scope requires a database")
	}
	if tc.IsZero() {
		return nil, ErrTenantContextRequired
	}
	return &Scope{db: db, tc: tc}, nil
}

// TenantContext returns the tenant the scope is bound to
func (s *Scope) TenantContext() shared.TenantContext {
	return s.tc
}

// TenantID returns the bound tenant id
func (s *Scope) TenantID() uuid.UUID {
	return s.tc.TenantID()
}

// InTransaction reports whether the scope is bound to an open transaction
func (s *Scope) InTransaction() bool {
	return s.inTx
}

// DB returns a session restricted to the tenant through the current table's
// tenant_id column.
func (s *Scope) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Scopes(s.filter)
}

// Raw returns the session without the tenant filter, for statements that
// carry their own tenant predicate in SQL (counter upserts, guarded updates,
// joins through a parent row).
func (s *Scope) Raw(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Scope) filter(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: Column},
		Value:  s.tc.TenantID(),
	})
}

// Transaction runs fn in a transaction with a scope bound to it. When the
// scope is already transactional GORM nests the call as a savepoint, so a
// failing fn rolls back only its own writes.
func (s *Scope) Transaction(ctx context.Context, fn func(tx *Scope) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Scope{db: tx, tc: s.tc, inTx: true})
	})
}
