package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/shared"
)

const (
	EventTypeSaleCreated      = "trade.sale_created"
	EventTypePurchaseReceived = "trade.purchase_received"
	EventTypeReturnDecided    = "trade.return_decided"
)

// SaleCreatedEvent is raised once a sale and its stock movements commit
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
}

// NewSaleCreatedEvent creates the event
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, s.ID, s.TenantID),
		InvoiceNumber:   s.InvoiceNumber,
		Total:           s.Total,
		ItemCount:       len(s.Items),
	}
}

// PurchaseReceivedEvent is raised once a purchase invoice commits
type PurchaseReceivedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
}

// NewPurchaseReceivedEvent creates the event
func NewPurchaseReceivedEvent(p *PurchaseInvoice) *PurchaseReceivedEvent {
	return &PurchaseReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReceived, p.ID, p.TenantID),
		InvoiceNumber:   p.InvoiceNumber,
		SupplierID:      p.SupplierID,
		Total:           p.Total,
	}
}

// ReturnDecidedEvent is raised when a return is approved or rejected
type ReturnDecidedEvent struct {
	shared.BaseDomainEvent
	Kind      ReturnKind   `json:"kind"`
	Status    ReturnStatus `json:"status"`
	ProductID uuid.UUID    `json:"product_id"`
	Quantity  int64        `json:"quantity"`
}

// NewReturnDecidedEvent creates the event
func NewReturnDecidedEvent(r *Return) *ReturnDecidedEvent {
	return &ReturnDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnDecided, r.ID, r.TenantID),
		Kind:            r.Kind,
		Status:          r.Status,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
	}
}
