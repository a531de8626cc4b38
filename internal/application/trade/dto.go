package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/domain/trade"
)

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	CustomerName  string            `json:"customer_name" binding:"max=200"`
	SaleDate      *time.Time        `json:"sale_date"`
	Notes         string            `json:"notes" binding:"max=2000"`
	DiscountType  string            `json:"discount_type" binding:"omitempty,oneof=none fixed percentage"`
	DiscountValue decimal.Decimal   `json:"discount_value"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SaleItemRequest is a line of a new sale. UnitPrice defaults to the product's price.
type SaleItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// UpdateSaleRequest edits the header of a sale. Lines cannot be changed.
type UpdateSaleRequest struct {
	CustomerName string    `json:"customer_name" binding:"max=200"`
	SaleDate     time.Time `json:"sale_date" binding:"required"`
	Notes        string    `json:"notes" binding:"max=2000"`
}

// SaleListFilter narrows the sale listing
type SaleListFilter struct {
	query.ListQuery
	// Mine restricts the listing to sales created by the caller
	Mine bool `form:"mine"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	InvoiceNumber  string             `json:"invoice_number"`
	CustomerName   string             `json:"customer_name"`
	SaleDate       time.Time          `json:"sale_date"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountType   string             `json:"discount_type"`
	DiscountValue  decimal.Decimal    `json:"discount_value"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	Notes          string             `json:"notes"`
	CreatedBy      uuid.UUID          `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	Items          []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse represents a sale line
type SaleItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ToSaleResponse converts a sale and its loaded items
func ToSaleResponse(s *trade.Sale) SaleResponse {
	resp := SaleResponse{
		ID:             s.ID,
		InvoiceNumber:  s.InvoiceNumber,
		CustomerName:   s.CustomerName,
		SaleDate:       s.SaleDate,
		Subtotal:       s.Subtotal,
		DiscountType:   string(s.DiscountType),
		DiscountValue:  s.DiscountValue,
		DiscountAmount: s.DiscountAmount,
		Total:          s.Total,
		Notes:          s.Notes,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return resp
}

// CreatePurchaseRequest represents a request to record received stock
type CreatePurchaseRequest struct {
	SupplierID   *uuid.UUID            `json:"supplier_id"`
	PurchaseDate *time.Time            `json:"purchase_date"`
	Notes        string                `json:"notes" binding:"max=2000"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseItemRequest is a line of a new purchase. UnitCost defaults to the product's cost price.
type PurchaseItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required,min=1"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
}

// UpdatePurchaseRequest edits the header of a purchase
type UpdatePurchaseRequest struct {
	SupplierID   *uuid.UUID `json:"supplier_id"`
	PurchaseDate time.Time  `json:"purchase_date" binding:"required"`
	Notes        string     `json:"notes" binding:"max=2000"`
}

// PurchaseResponse represents a purchase invoice in API responses
type PurchaseResponse struct {
	ID            uuid.UUID              `json:"id"`
	InvoiceNumber string                 `json:"invoice_number"`
	SupplierID    *uuid.UUID             `json:"supplier_id,omitempty"`
	PurchaseDate  time.Time              `json:"purchase_date"`
	Total         decimal.Decimal        `json:"total"`
	Notes         string                 `json:"notes"`
	CreatedBy     uuid.UUID              `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
	Items         []PurchaseItemResponse `json:"items,omitempty"`
}

// PurchaseItemResponse represents a purchase line
type PurchaseItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ToPurchaseResponse converts a purchase invoice and its loaded items
func ToPurchaseResponse(p *trade.PurchaseInvoice) PurchaseResponse {
	resp := PurchaseResponse{
		ID:            p.ID,
		InvoiceNumber: p.InvoiceNumber,
		SupplierID:    p.SupplierID,
		PurchaseDate:  p.PurchaseDate,
		Total:         p.Total,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
	for _, it := range p.Items {
		resp.Items = append(resp.Items, PurchaseItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			LineTotal: it.LineTotal,
		})
	}
	return resp
}

// CreateReturnRequest represents a request to open a return
type CreateReturnRequest struct {
	Kind       string     `json:"kind" binding:"required,oneof=customer supplier"`
	SaleID     *uuid.UUID `json:"sale_id"`
	SupplierID *uuid.UUID `json:"supplier_id"`
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	Quantity   int64      `json:"quantity" binding:"required,min=1"`
	Reason     string     `json:"reason" binding:"max=2000"`
}

// ReturnListFilter narrows the return listing
type ReturnListFilter struct {
	query.ListQuery
	Kind   string `form:"kind" binding:"omitempty,oneof=customer supplier"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// ReturnResponse represents a return in API responses
type ReturnResponse struct {
	ID                     uuid.UUID  `json:"id"`
	Kind                   string     `json:"kind"`
	SaleID                 *uuid.UUID `json:"sale_id,omitempty"`
	SupplierID             *uuid.UUID `json:"supplier_id,omitempty"`
	ProductID              uuid.UUID  `json:"product_id"`
	Quantity               int64      `json:"quantity"`
	Reason                 string     `json:"reason"`
	Status                 string     `json:"status"`
	InventoryTransactionID *uuid.UUID `json:"inventory_transaction_id,omitempty"`
	CreatedBy              uuid.UUID  `json:"created_by"`
	DecidedBy              *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt              *time.Time `json:"decided_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}

// ToReturnResponse converts a return
func ToReturnResponse(r *trade.Return) ReturnResponse {
	return ReturnResponse{
		ID:                     r.ID,
		Kind:                   string(r.Kind),
		SaleID:                 r.SaleID,
		SupplierID:             r.SupplierID,
		ProductID:              r.ProductID,
		Quantity:               r.Quantity,
		Reason:                 r.Reason,
		Status:                 string(r.Status),
		InventoryTransactionID: r.InventoryTransactionID,
		CreatedBy:              r.CreatedBy,
		DecidedBy:              r.DecidedBy,
		DecidedAt:              r.DecidedAt,
		CreatedAt:              r.CreatedAt,
	}
}
