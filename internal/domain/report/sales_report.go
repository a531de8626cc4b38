package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/shared"
)

// Period is a half-open date range [From, To)
type Period struct {
	From time.Time
	To   time.Time
}

// Validate checks the range is ordered and not empty
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return shared.Invalid("Report period requires both from and to dates")
	}
	if !p.To.After(p.From) {
		return shared.Invalid("Report period end must be after its start")
	}
	return nil
}

// SalesTotals is the raw aggregate over sales in a period
type SalesTotals struct {
	SaleCount     int64
	Subtotal      decimal.Decimal
	Discounts     decimal.Decimal
	Total         decimal.Decimal
	ExpensesTotal decimal.Decimal
}

// SalesSummary provides aggregated sales statistics
type SalesSummary struct {
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	SaleCount     int64           `json:"sale_count"`
	GrossSubtotal decimal.Decimal `json:"gross_subtotal"`
	Discounts     decimal.Decimal `json:"discounts"`
	NetTotal      decimal.Decimal `json:"net_total"`
	AvgSaleValue  decimal.Decimal `json:"avg_sale_value"`
	Expenses      decimal.Decimal `json:"expenses"`
	NetAfterCosts decimal.Decimal `json:"net_after_expenses"`
}

// NewSalesSummary derives the summary from the raw totals
func NewSalesSummary(p Period, t SalesTotals) SalesSummary {
	avg := decimal.Zero
	if t.SaleCount > 0 {
		avg = t.Total.Div(decimal.NewFromInt(t.SaleCount)).Round(2)
	}
	return SalesSummary{
		PeriodStart:   p.From,
		PeriodEnd:     p.To,
		SaleCount:     t.SaleCount,
		GrossSubtotal: t.Subtotal,
		Discounts:     t.Discounts,
		NetTotal:      t.Total,
		AvgSaleValue:  avg,
		Expenses:      t.ExpensesTotal,
		NetAfterCosts: t.Total.Sub(t.ExpensesTotal),
	}
}

// Reader runs tenant-scoped aggregate queries
type Reader interface {
	SalesTotals(ctx context.Context, p Period) (SalesTotals, error)
}
