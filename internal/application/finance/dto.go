package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/domain/finance"
)

// ExpenseRequest creates or replaces an expense
type ExpenseRequest struct {
	Category    string          `json:"category" binding:"required,max=100"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=1000"`
	IncurredOn  time.Time       `json:"incurred_on" binding:"required"`
}

func (r ExpenseRequest) input() finance.ExpenseInput {
	return finance.ExpenseInput{
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		IncurredOn:  r.IncurredOn,
	}
}

// ExpenseListFilter narrows the expense list
type ExpenseListFilter struct {
	query.ListQuery
	Category string `form:"category"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	IncurredOn  time.Time       `json:"incurred_on"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToExpenseResponse converts a domain Expense
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		IncurredOn:  e.IncurredOn,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
