package tenant

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnscopedQuery aborts statements on tenant-owned tables that lack a tenant predicate
var ErrUnscopedQuery = errors.New("query on tenant-owned table has no tenant condition")

const skipGuardKey = "tenant:skip_guard"

// SkipGuard marks a session as intentionally crossing tenants. It is used by
// the foreign-id probe and by lookups on global tables during onboarding.
func SkipGuard(db *gorm.DB) *gorm.DB {
	return db.Set(skipGuardKey, true)
}

// RegisterGuard installs the verifier on query, update and delete.
func RegisterGuard(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant:guard_query", guard); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant:guard_update", guard); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("tenant:guard_delete", guard)
}

func guard(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	if skip, ok := db.Get(skipGuardKey); ok && skip == true {
		return
	}
	stmt := db.Statement
	if stmt.Schema == nil || stmt.Schema.LookUpField(Column) == nil {
		return
	}
	if !hasTenantCondition(stmt) {
		_ = db.AddError(ErrUnscopedQuery)
	}
}

func hasTenantCondition(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	found := false
	for _, expr := range where.Exprs {
		// a top-level OR would widen the result past the tenant predicate
		if _, isOr := expr.(clause.OrConditions); isOr {
			return false
		}
		if exprMentionsTenant(expr) {
			found = true
		}
	}
	return found
}

func exprMentionsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		return columnIsTenant(e.Column)
	case clause.IN:
		return columnIsTenant(e.Column)
	case clause.Expr:
		return strings.Contains(e.SQL, Column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, Column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if exprMentionsTenant(cond) {
				return true
			}
		}
	}
	return false
}

func columnIsTenant(col any) bool {
	switch c := col.(type) {
	case clause.Column:
		return c.Name == Column
	case string:
		return c == Column || strings.HasSuffix(c, "."+Column)
	}
	return false
}
