package finance

import "github.com/storeline/backend/internal/domain/shared"

// ExpenseRepository persists expenses for one tenant
type ExpenseRepository interface {
	shared.CrudRepository[Expense]
}
