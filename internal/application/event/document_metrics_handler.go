package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"github.com/storeline/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// DocumentRecorder receives committed document outcomes
type DocumentRecorder interface {
	RecordDocumentCreated(ctx context.Context, tenantID uuid.UUID, kind string)
	RecordReturnDecided(ctx context.Context, tenantID uuid.UUID, kind, status string)
}

// DocumentMetricsHandler turns committed trade events into counters
type DocumentMetricsHandler struct {
	recorder DocumentRecorder
	logger   *zap.Logger
}

// NewDocumentMetricsHandler creates a new handler
func NewDocumentMetricsHandler(recorder DocumentRecorder, logger *zap.Logger) *DocumentMetricsHandler {
	return &DocumentMetricsHandler{recorder: recorder, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DocumentMetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCreated,
		trade.EventTypePurchaseReceived,
		trade.EventTypeReturnDecided,
	}
}

// Handle records one event
func (h *DocumentMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.SaleCreatedEvent:
		h.recorder.RecordDocumentCreated(ctx, e.TenantID(), "sale")
		h.logger.Debug("Sale recorded",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("total", e.Total.String()),
		)
	case *trade.PurchaseReceivedEvent:
		h.recorder.RecordDocumentCreated(ctx, e.TenantID(), "purchase")
		h.logger.Debug("Purchase recorded",
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("invoice_number", e.InvoiceNumber),
		)
	case *trade.ReturnDecidedEvent:
		h.recorder.RecordReturnDecided(ctx, e.TenantID(), string(e.Kind), string(e.Status))
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}
	return nil
}

var _ shared.EventHandler = (*DocumentMetricsHandler)(nil)
