package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/report"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
)

// GormReportReader runs the tenant's report aggregates
type GormReportReader struct {
	scope *tenant.Scope
}

var _ report.Reader = (*GormReportReader)(nil)

// NewGormReportReader binds the reader to scope
func NewGormReportReader(scope *tenant.Scope) *GormReportReader {
	return &GormReportReader{scope: scope}
}

type salesAggregate struct {
	SaleCount int64
	Subtotal  decimal.NullDecimal
	Discounts decimal.NullDecimal
	Total     decimal.NullDecimal
}

// SalesTotals aggregates sales and expenses in [p.From, p.To)
func (r *GormReportReader) SalesTotals(ctx context.Context, p report.Period) (report.SalesTotals, error) {
	var agg salesAggregate
	err := r.scope.DB(ctx).Model(&trade.Sale{}).
		Select("COUNT(*) AS sale_count, SUM(subtotal) AS subtotal, SUM(discount_amount) AS discounts, SUM(total) AS total").
		Where("sale_date >= ? AND sale_date < ?", p.From, p.To).
		Scan(&agg).Error
	if err != nil {
		return report.SalesTotals{}, err
	}

	var expenses struct{ Amount decimal.NullDecimal }
	err = r.scope.DB(ctx).Model(&finance.Expense{}).
		Select("SUM(amount) AS amount").
		Where("incurred_on >= ? AND incurred_on < ?", p.From, p.To).
		Scan(&expenses).Error
	if err != nil {
		return report.SalesTotals{}, err
	}

	return report.SalesTotals{
		SaleCount:     agg.SaleCount,
		Subtotal:      agg.Subtotal.Decimal,
		Discounts:     agg.Discounts.Decimal,
		Total:         agg.Total.Decimal,
		ExpensesTotal: expenses.Amount.Decimal,
	}, nil
}
