package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/finance"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/storeline/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryQueryPeriod(t *testing.T) {
	now := time.Date(2026, 4, 15, 13, 0, 0, 0, time.UTC)

	p := SummaryQuery{}.Period(now)
	assert.Equal(t, time.Date(2026, 4, 16, 0, 0, 0, 0, time.UTC), p.To)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), p.From)

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	p = SummaryQuery{From: &from, To: &to}.Period(now)
	assert.Equal(t, from, p.From)
	assert.Equal(t, time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC), p.To)
}

func TestSalesSummary(t *testing.T) {
	db := testdb.Open(t)
	unit := testdb.UnitOfWork(db)
	a := testdb.Tenant(t, db, "A")
	b := testdb.Tenant(t, db, "B")
	ctx := context.Background()
	actor := uuid.New()

	record := func(tc shared.TenantContext, day int, price int64, number string) {
		sale, err := trade.NewSale(tc.TenantID(), actor, trade.SaleHeader{
			SaleDate: time.Date(2026, 4, day, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NoError(t, sale.AddItem(uuid.New(), 1, decimal.NewFromInt(price)))
		require.NoError(t, sale.Price(trade.DefaultDiscountPolicy(), trade.DiscountNone, decimal.Zero))
		sale.Confirm(number)
		require.NoError(t, unit.Execute(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
			return repos.Sales().Create(ctx, sale)
		}))
	}
	record(a, 2, 100, "INV-20260402-0001")
	record(a, 3, 50, "INV-20260403-0001")
	record(a, 20, 999, "INV-20260420-0001")
	record(b, 2, 70, "INV-20260402-0001")

	expense, err := finance.NewExpense(actor, finance.ExpenseInput{
		Category: "rent", Amount: decimal.NewFromInt(30), IncurredOn: time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, unit.Execute(ctx, a, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Expenses().Create(ctx, expense)
	}))

	svc := NewReportService(unit)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	summary, err := svc.SalesSummary(ctx, a, SummaryQuery{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.SaleCount)
	assert.True(t, decimal.NewFromInt(150).Equal(summary.NetTotal), summary.NetTotal.String())
	assert.True(t, decimal.NewFromInt(75).Equal(summary.AvgSaleValue))
	assert.True(t, decimal.NewFromInt(120).Equal(summary.NetAfterCosts))

	other, err := svc.SalesSummary(ctx, b, SummaryQuery{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.SaleCount)
	assert.True(t, other.Expenses.IsZero())
}

func TestSalesSummaryRejectsInvertedRange(t *testing.T) {
	db := testdb.Open(t)
	tc := testdb.Tenant(t, db, "A")
	svc := NewReportService(testdb.UnitOfWork(db))

	from := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.SalesSummary(context.Background(), tc, SummaryQuery{From: &from, To: &to})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
