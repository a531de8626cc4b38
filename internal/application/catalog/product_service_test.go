package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/infrastructure/persistence"
	"github.com/storeline/backend/internal/infrastructure/persistence/tenant"
	"github.com/storeline/backend/internal/infrastructure/persistence/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductRequest(name string, opening int64) CreateProductRequest {
	return CreateProductRequest{
		Name:          name,
		SKU:           "SKU-" + name,
		UnitPrice:     decimal.NewFromInt(10),
		CostPrice:     decimal.NewFromInt(6),
		OpeningStock:  opening,
		MinStockAlert: 3,
	}
}

func TestCreateRecordsOpeningStockInLedger(t *testing.T) {
	db := testdb.Open(t)
	tc := testdb.Tenant(t, db, "Shop")
	svc := NewProductService(testdb.UnitOfWork(db))
	ctx := context.Background()

	p, err := svc.Create(ctx, tc, newProductRequest("Aspirin", 12))
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.Quantity)
	assert.False(t, p.IsLowStock)

	scope, err := tenant.NewScope(db, tc)
	require.NoError(t, err)
	rows, total, err := persistence.NewInventoryTransactionRepository(scope).List(ctx, inventory.TransactionFilter{
		Filter:    shared.DefaultFilter(),
		ProductID: &p.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, inventory.ReferenceOpening, rows[0].ReferenceType)
	assert.Equal(t, int64(12), rows[0].Quantity)

	empty, err := svc.Create(ctx, tc, newProductRequest("Bandage", 0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Quantity)
	assert.True(t, empty.IsLowStock)
}

func TestUpdateNeverChangesQuantity(t *testing.T) {
	db := testdb.Open(t)
	tc := testdb.Tenant(t, db, "Shop")
	svc := NewProductService(testdb.UnitOfWork(db))
	ctx := context.Background()

	p, err := svc.Create(ctx, tc, newProductRequest("Aspirin", 7))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, tc, p.ID, UpdateProductRequest{
		Name:          "Aspirin 100mg",
		UnitPrice:     decimal.NewFromInt(11),
		MinStockAlert: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aspirin 100mg", updated.Name)
	assert.Equal(t, int64(7), updated.Quantity)
	assert.True(t, updated.IsLowStock)

	reloaded, err := svc.GetByID(ctx, tc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), reloaded.Quantity)
}

func TestProductsAreIsolatedPerTenant(t *testing.T) {
	db := testdb.Open(t)
	a := testdb.Tenant(t, db, "A")
	b := testdb.Tenant(t, db, "B")
	svc := NewProductService(testdb.UnitOfWork(db))
	ctx := context.Background()

	p, err := svc.Create(ctx, a, newProductRequest("Aspirin", 1))
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, b, p.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound), "another tenant's id must look absent")

	_, err = svc.Update(ctx, b, p.ID, UpdateProductRequest{Name: "Hijacked"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, b, p.ID), shared.ErrNotFound))

	page, err := svc.List(ctx, b, query.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = svc.List(ctx, a, query.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestDeleteIsSoft(t *testing.T) {
	db := testdb.Open(t)
	tc := testdb.Tenant(t, db, "Shop")
	svc := NewProductService(testdb.UnitOfWork(db))
	ctx := context.Background()

	p, err := svc.Create(ctx, tc, newProductRequest("Aspirin", 0))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, tc, p.ID))

	_, err = svc.GetByID(ctx, tc, p.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	var n int64
	require.NoError(t, db.Table("products").Where("id = ? AND deleted_at IS NOT NULL", p.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestToProductResponseExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	in := newProductRequest("Syrup", 0).input()
	expiry := now.AddDate(0, 0, 5)
	in.ExpiryDate = &expiry
	in.MinExpiryAlert = 7

	p, err := catalog.NewProduct(in)
	require.NoError(t, err)
	resp := ToProductResponse(p, now)
	require.NotNil(t, resp.DaysUntilExpiry)
	assert.Equal(t, 5, *resp.DaysUntilExpiry)
	assert.True(t, resp.IsExpiringSoon)
	assert.False(t, resp.IsExpired)
	assert.NotEqual(t, uuid.Nil, resp.ID)
}
