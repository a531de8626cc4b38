package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ProductInput {
	return ProductInput{
		Name:          "Paracetamol 500mg",
		SKU:           "PCM-500",
		UnitPrice:     decimal.NewFromFloat(2.5),
		CostPrice:     decimal.NewFromFloat(1.2),
		MinStockAlert: 5,
	}
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Quantity)
	assert.Equal(t, "PCM-500", p.SKU)
	assert.NotEqual(t, uuid.Nil, p.ID)

	tests := []struct {
		name   string
		mutate func(*ProductInput)
	}{
		{"empty name", func(in *ProductInput) { in.Name = "  " }},
		{"negative price", func(in *ProductInput) { in.UnitPrice = decimal.NewFromInt(-1) }},
		{"negative cost", func(in *ProductInput) { in.CostPrice = decimal.NewFromInt(-1) }},
		{"negative stock alert", func(in *ProductInput) { in.MinStockAlert = -1 }},
		{"negative expiry alert", func(in *ProductInput) { in.MinExpiryAlert = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewProduct(in)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestUpdateKeepsQuantity(t *testing.T) {
	p, err := NewProduct(validInput())
	require.NoError(t, err)
	p.Quantity = 42

	in := validInput()
	in.Name = "Paracetamol 1g"
	require.NoError(t, p.Update(in))
	assert.Equal(t, "Paracetamol 1g", p.Name)
	assert.Equal(t, int64(42), p.Quantity)
}

func TestIsLowStock(t *testing.T) {
	p := &Product{MinStockAlert: 5}
	p.Quantity = 6
	assert.False(t, p.IsLowStock())
	p.Quantity = 5
	assert.True(t, p.IsLowStock())
	p.Quantity = 0
	assert.True(t, p.IsLowStock())
}

func TestExpiryPredicates(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	day := func(offset int) *time.Time {
		d := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		return &d
	}

	tests := []struct {
		name        string
		expiry      *time.Time
		alertDays   int
		wantSoon    bool
		wantExpired bool
		wantDays    int
		wantHasDate bool
	}{
		{"no expiry date", nil, 30, false, false, 0, false},
		{"expires today", day(0), 0, true, false, 0, true},
		{"inside alert window", day(7), 10, true, false, 7, true},
		{"on window edge", day(10), 10, true, false, 10, true},
		{"outside window", day(11), 10, false, false, 11, true},
		{"expired yesterday", day(-1), 10, false, true, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{ExpiryDate: tt.expiry, MinExpiryAlert: tt.alertDays}
			days, ok := p.DaysUntilExpiry(now)
			assert.Equal(t, tt.wantHasDate, ok)
			assert.Equal(t, tt.wantDays, days)
			assert.Equal(t, tt.wantSoon, p.IsExpiringSoon(now))
			assert.Equal(t, tt.wantExpired, p.IsExpired(now))
		})
	}
}
