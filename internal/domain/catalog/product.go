package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Product is a tenant-owned stock item.
//
// Quantity is a projection of the inventory ledger. It is written only by the
// ledger inside the same transaction as the ledger append, never by product
// edits.
type Product struct {
	shared.TenantEntity
	Name           string          `gorm:"size:200;not null" json:"name"`
	SKU            string          `gorm:"size:64;index" json:"sku"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cost_price"`
	Quantity       int64           `gorm:"not null;default:0" json:"quantity"`
	MinStockAlert  int64           `gorm:"not null;default:0" json:"min_stock_alert"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	MinExpiryAlert int             `gorm:"not null;default:0" json:"min_expiry_alert"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductInput carries the editable product fields
type ProductInput struct {
	Name           string
	SKU            string
	UnitPrice      decimal.Decimal
	CostPrice      decimal.Decimal
	MinStockAlert  int64
	ExpiryDate     *time.Time
	MinExpiryAlert int
}

// Validate checks the editable fields
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return shared.Invalid("Product name cannot be empty")
	}
	if len(in.Name) > 200 {
		return shared.Invalid("Product name cannot exceed 200 characters")
	}
	if in.UnitPrice.IsNegative() {
		return shared.Invalid("Unit price cannot be negative")
	}
	if in.CostPrice.IsNegative() {
		return shared.Invalid("Cost price cannot be negative")
	}
	if in.MinStockAlert < 0 {
		return shared.Invalid("Minimum stock alert cannot be negative")
	}
	if in.MinExpiryAlert < 0 {
		return shared.Invalid("Minimum expiry alert cannot be negative")
	}
	return nil
}

// NewProduct creates a product with zero stock. Opening stock is recorded
// through the inventory ledger afterwards.
func NewProduct(in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := &Product{TenantEntity: shared.TenantEntity{BaseEntity: shared.NewBaseEntity()}}
	p.apply(in)
	return p, nil
}

// Update replaces the editable fields. Quantity is left untouched.
func (p *Product) Update(in ProductInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	p.apply(in)
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) apply(in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.TrimSpace(in.SKU)
	p.UnitPrice = in.UnitPrice
	p.CostPrice = in.CostPrice
	p.MinStockAlert = in.MinStockAlert
	p.ExpiryDate = in.ExpiryDate
	p.MinExpiryAlert = in.MinExpiryAlert
}

// IsLowStock reports whether on-hand quantity is at or below the alert level
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockAlert
}

// DaysUntilExpiry returns whole calendar days from now to the expiry date.
// ok is false when the product does not expire.
func (p *Product) DaysUntilExpiry(now time.Time) (days int, ok bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	exp := p.ExpiryDate.In(loc)
	expiry := time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(expiry.Sub(today).Hours() / 24)), true
}

// IsExpiringSoon is true when 0 <= days until expiry <= MinExpiryAlert
func (p *Product) IsExpiringSoon(now time.Time) bool {
	days, ok := p.DaysUntilExpiry(now)
	return ok && days >= 0 && days <= p.MinExpiryAlert
}

// IsExpired is true once the expiry date has passed
func (p *Product) IsExpired(now time.Time) bool {
	days, ok := p.DaysUntilExpiry(now)
	return ok && days < 0
}
