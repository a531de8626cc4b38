package inventory

import (
	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
)

// EventTypeStockBelowThreshold is raised when a movement leaves a product at or below its alert level.
const EventTypeStockBelowThreshold = "inventory.stock_below_threshold"

// StockBelowThresholdEvent carries the product state after the movement.
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	Threshold   int64     `json:"threshold"`
}

// NewStockBelowThresholdEvent creates the event
func NewStockBelowThresholdEvent(tenantID, productID uuid.UUID, name string, quantity, threshold int64) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, productID, tenantID),
		ProductID:       productID,
		ProductName:     name,
		Quantity:        quantity,
		Threshold:       threshold,
	}
}
