package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestExpenseLifecycle(t *testing.T) {
	db := testdb.Open(t)
	tc := testdb.Tenant(t, db, "Shop")
	svc := NewExpenseService(testdb.UnitOfWork(db))
	ctx := context.Background()
	actor := uuid.New()

	rent, err := svc.Create(ctx, tc, actor, ExpenseRequest{Category: "rent", Amount: decimal.NewFromInt(500), IncurredOn: day(1)})
	require.NoError(t, err)
	assert.Equal(t, actor, rent.CreatedBy)

	_, err = svc.Create(ctx, tc, actor, ExpenseRequest{Category: "utilities", Amount: decimal.NewFromInt(80), IncurredOn: day(10)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, tc, actor, ExpenseRequest{Category: "rent", Amount: decimal.Zero, IncurredOn: day(1)})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	byCategory, err := svc.List(ctx, tc, ExpenseListFilter{Category: "rent"})
	require.NoError(t, err)
	require.Len(t, byCategory.Items, 1)
	assert.Equal(t, rent.ID, byCategory.Items[0].ID)

	from, to := day(5), day(15)
	byDate, err := svc.List(ctx, tc, ExpenseListFilter{ListQuery: query.ListQuery{From: &from, To: &to}})
	require.NoError(t, err)
	require.Len(t, byDate.Items, 1)
	assert.Equal(t, "utilities", byDate.Items[0].Category)

	updated, err := svc.Update(ctx, tc, rent.ID, ExpenseRequest{Category: "rent", Amount: decimal.NewFromInt(550), IncurredOn: day(1), Description: "April"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(550).Equal(updated.Amount))
	assert.Equal(t, actor, updated.CreatedBy)

	require.NoError(t, svc.Delete(ctx, tc, rent.ID))
	_, err = svc.GetByID(ctx, tc, rent.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestExpensesAreIsolatedPerTenant(t *testing.T) {
	db := testdb.Open(t)
	a := testdb.Tenant(t, db, "A")
	b := testdb.Tenant(t, db, "B")
	svc := NewExpenseService(testdb.UnitOfWork(db))
	ctx := context.Background()

	created, err := svc.Create(ctx, a, uuid.New(), ExpenseRequest{Category: "rent", Amount: decimal.NewFromInt(10), IncurredOn: day(1)})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, b, created.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, b, created.ID), shared.ErrNotFound))

	page, err := svc.List(ctx, b, ExpenseListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
}
