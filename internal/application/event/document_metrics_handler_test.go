package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordDocumentCreated(ctx context.Context, tenantID uuid.UUID, kind string) {
	m.Called(ctx, tenantID, kind)
}

func (m *mockRecorder) RecordReturnDecided(ctx context.Context, tenantID uuid.UUID, kind, status string) {
	m.Called(ctx, tenantID, kind, status)
}

func TestDocumentMetricsHandler(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	rec := new(mockRecorder)
	h := NewDocumentMetricsHandler(rec, zap.NewNop())

	sale := &trade.Sale{InvoiceNumber: "INV-20260402-0001", Total: decimal.NewFromInt(10)}
	sale.ID = uuid.New()
	sale.TenantID = tenantID
	purchase := &trade.PurchaseInvoice{InvoiceNumber: "PUR-20260402-0001"}
	purchase.ID = uuid.New()
	purchase.TenantID = tenantID
	ret := &trade.Return{Kind: trade.ReturnKindCustomer, Status: trade.ReturnStatusApproved}
	ret.ID = uuid.New()
	ret.TenantID = tenantID

	rec.On("RecordDocumentCreated", ctx, tenantID, "sale").Once()
	rec.On("RecordDocumentCreated", ctx, tenantID, "purchase").Once()
	rec.On("RecordReturnDecided", ctx, tenantID, "customer", "approved").Once()

	require.NoError(t, h.Handle(ctx, trade.NewSaleCreatedEvent(sale)))
	require.NoError(t, h.Handle(ctx, trade.NewPurchaseReceivedEvent(purchase)))
	require.NoError(t, h.Handle(ctx, trade.NewReturnDecidedEvent(ret)))
	rec.AssertExpectations(t)

	assert.ElementsMatch(t, []string{
		trade.EventTypeSaleCreated, trade.EventTypePurchaseReceived, trade.EventTypeReturnDecided,
	}, h.EventTypes())
}

func TestDocumentMetricsHandlerRejectsForeignEvents(t *testing.T) {
	h := NewDocumentMetricsHandler(new(mockRecorder), zap.NewNop())
	var e shared.DomainEvent = inventory.NewStockBelowThresholdEvent(uuid.New(), uuid.New(), "Tea", 1, 5)
	assert.Error(t, h.Handle(context.Background(), e))
}
