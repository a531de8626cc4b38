package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/shared"
)

// Expense is an operating cost recorded by a tenant
type Expense struct {
	shared.TenantEntity
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	IncurredOn  time.Time       `gorm:"not null;index" json:"incurred_on"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// ExpenseInput carries the editable expense fields
type ExpenseInput struct {
	Category    string
	Amount      decimal.Decimal
	Description string
	IncurredOn  time.Time
}

// Validate checks the editable fields
func (in ExpenseInput) Validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return shared.Invalid("Expense category cannot be empty")
	}
	if !in.Amount.IsPositive() {
		return shared.Invalid("Expense amount must be positive")
	}
	if in.IncurredOn.IsZero() {
		return shared.Invalid("Expense date is required")
	}
	return nil
}

// NewExpense records a new expense
func NewExpense(createdBy uuid.UUID, in ExpenseInput) (*Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	e := &Expense{
		TenantEntity: shared.TenantEntity{BaseEntity: shared.NewBaseEntity()},
		CreatedBy:    createdBy,
	}
	e.apply(in)
	return e, nil
}

// Update replaces the editable fields
func (e *Expense) Update(in ExpenseInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	e.apply(in)
	e.UpdatedAt = time.Now()
	return nil
}

func (e *Expense) apply(in ExpenseInput) {
	e.Category = strings.TrimSpace(in.Category)
	e.Amount = in.Amount
	e.Description = in.Description
	e.IncurredOn = in.IncurredOn
}
