package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	SKU            string          `json:"sku" binding:"max=64"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	OpeningStock   int64           `json:"opening_stock" binding:"min=0"`
	MinStockAlert  int64           `json:"min_stock_alert" binding:"min=0"`
	ExpiryDate     *time.Time      `json:"expiry_date"`
	MinExpiryAlert int             `json:"min_expiry_alert" binding:"min=0"`
}

func (r CreateProductRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:           r.Name,
		SKU:            r.SKU,
		UnitPrice:      r.UnitPrice,
		CostPrice:      r.CostPrice,
		MinStockAlert:  r.MinStockAlert,
		ExpiryDate:     r.ExpiryDate,
		MinExpiryAlert: r.MinExpiryAlert,
	}
}

// UpdateProductRequest replaces the editable product fields. Quantity is not
// editable; stock changes go through purchases, sales and returns.
type UpdateProductRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	SKU            string          `json:"sku" binding:"max=64"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	MinStockAlert  int64           `json:"min_stock_alert" binding:"min=0"`
	ExpiryDate     *time.Time      `json:"expiry_date"`
	MinExpiryAlert int             `json:"min_expiry_alert" binding:"min=0"`
}

func (r UpdateProductRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:           r.Name,
		SKU:            r.SKU,
		UnitPrice:      r.UnitPrice,
		CostPrice:      r.CostPrice,
		MinStockAlert:  r.MinStockAlert,
		ExpiryDate:     r.ExpiryDate,
		MinExpiryAlert: r.MinExpiryAlert,
	}
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	Quantity        int64           `json:"quantity"`
	MinStockAlert   int64           `json:"min_stock_alert"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	MinExpiryAlert  int             `json:"min_expiry_alert"`
	IsLowStock      bool            `json:"is_low_stock"`
	IsExpiringSoon  bool            `json:"is_expiring_soon"`
	IsExpired       bool            `json:"is_expired"`
	DaysUntilExpiry *int            `json:"days_until_expiry,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse with its
// stock and expiry predicates evaluated at now
func ToProductResponse(p *catalog.Product, now time.Time) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Name:           p.Name,
		SKU:            p.SKU,
		UnitPrice:      p.UnitPrice,
		CostPrice:      p.CostPrice,
		Quantity:       p.Quantity,
		MinStockAlert:  p.MinStockAlert,
		ExpiryDate:     p.ExpiryDate,
		MinExpiryAlert: p.MinExpiryAlert,
		IsLowStock:     p.IsLowStock(),
		IsExpiringSoon: p.IsExpiringSoon(now),
		IsExpired:      p.IsExpired(now),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if days, ok := p.DaysUntilExpiry(now); ok {
		resp.DaysUntilExpiry = &days
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product, now time.Time) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i], now)
	}
	return out
}
