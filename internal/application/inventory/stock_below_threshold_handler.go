package inventory

import (
	"context"
	"fmt"

	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlertNotifier delivers a stock alert over some channel
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	TenantID    string `json:"tenant_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	Threshold   int64  `json:"threshold"`
	AlertType   string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockBelowThresholdHandler logs committed movements that leave a product at
// or below its alert level and forwards them to an optional notifier
type StockBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockBelowThresholdHandler creates a new handler for stock below threshold events
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowThresholdHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThreshold event
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	alert := StockAlert{
		TenantID:    e.TenantID().String(),
		ProductID:   e.ProductID.String(),
		ProductName: e.ProductName,
		Quantity:    e.Quantity,
		Threshold:   e.Threshold,
		AlertType:   "low_stock",
	}
	if e.Quantity == 0 {
		alert.AlertType = "out_of_stock"
	}

	h.logger.Warn("Stock below threshold",
		zap.String("tenant_id", alert.TenantID),
		zap.String("product_id", alert.ProductID),
		zap.String("product_name", alert.ProductName),
		zap.Int64("quantity", alert.Quantity),
		zap.Int64("threshold", alert.Threshold),
		zap.String("alert_type", alert.AlertType),
	)

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		return fmt.Errorf("send stock alert: %w", err)
	}
	return nil
}

var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)
