package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
)

// Sale is a confirmed sales document. Creating it decrements stock for every line.
type Sale struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string          `gorm:"size:32;not null" json:"invoice_number"`
	CustomerName   string          `gorm:"size:200" json:"customer_name"`
	SaleDate       time.Time       `gorm:"not null;index" json:"sale_date"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	DiscountType   DiscountType    `gorm:"type:varchar(20);not null;default:'none'" json:"discount_type"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_value"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	Items          []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is a line of a sale. It has no tenant column and is reached through its sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// SaleHeader carries the editable header fields of a sale
type SaleHeader struct {
	CustomerName string
	SaleDate     time.Time
	Notes        string
}

func (h SaleHeader) validate() error {
	if len(h.CustomerName) > 200 {
		return shared.Invalid("Customer name cannot exceed 200 characters")
	}
	if h.SaleDate.IsZero() {
		return shared.Invalid("Sale date is required")
	}
	return nil
}

// NewSale starts a sale without lines or number. The number is assigned by
// the allocator inside the same transaction that persists the sale.
func NewSale(tenantID, createdBy uuid.UUID, header SaleHeader) (*Sale, error) {
	if createdBy == uuid.Nil {
		return nil, shared.Invalid("Sale must record its creator")
	}
	if err := header.validate(); err != nil {
		return nil, err
	}
	s := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CreatedBy:           createdBy,
		DiscountType:        DiscountNone,
	}
	s.applyHeader(header)
	return s, nil
}

func (s *Sale) applyHeader(h SaleHeader) {
	s.CustomerName = strings.TrimSpace(h.CustomerName)
	s.SaleDate = h.SaleDate
	s.Notes = h.Notes
}

// AddItem appends a line priced at unitPrice
func (s *Sale) AddItem(productID uuid.UUID, quantity int64, unitPrice decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.Invalid("Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.Invalid("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.Invalid("Unit price cannot be negative")
	}
	s.Items = append(s.Items, SaleItem{
		ID:        uuid.New(),
		SaleID:    s.ID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(quantity)),
		CreatedAt: time.Now(),
	})
	return nil
}

// Price computes subtotal, discount and total under the policy
func (s *Sale) Price(policy DiscountPolicy, typ DiscountType, value decimal.Decimal) error {
	if len(s.Items) == 0 {
		return shared.Invalid("Sale must have at least one item")
	}
	subtotal := decimal.Zero
	for _, it := range s.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	subtotal = policy.Round(subtotal)

	amount, err := policy.Amount(subtotal, typ, value)
	if err != nil {
		return err
	}
	if typ == "" {
		typ = DiscountNone
	}
	s.Subtotal = subtotal
	s.DiscountType = typ
	s.DiscountValue = value
	s.DiscountAmount = amount
	s.Total = subtotal.Sub(amount)
	return nil
}

// Confirm assigns the allocated number and raises SaleCreated
func (s *Sale) Confirm(invoiceNumber string) {
	s.InvoiceNumber = invoiceNumber
	s.AddDomainEvent(NewSaleCreatedEvent(s))
}

// UpdateHeader edits customer, date and notes. Lines are immutable once
// confirmed, and a numbered sale keeps the day encoded in its number.
func (s *Sale) UpdateHeader(h SaleHeader) error {
	if err := h.validate(); err != nil {
		return err
	}
	if s.InvoiceNumber != "" && DayKey(h.SaleDate) != DayKey(s.SaleDate) {
		return shared.Invalid("Sale date cannot move to another day once the invoice number is issued")
	}
	s.applyHeader(h)
	s.UpdatedAt = time.Now()
	return nil
}

// StockEntries returns one outbound ledger entry per product, sorted by product id
func (s *Sale) StockEntries() []inventory.Entry {
	lines := make([]stockLine, len(s.Items))
	for i, it := range s.Items {
		lines[i] = stockLine{productID: it.ProductID, quantity: it.Quantity}
	}
	return ledgerEntries(lines, -1, inventory.TransactionTypeOut, inventory.ReferenceSale, s.ID)
}

// TotalQuantity returns the number of units sold
func (s *Sale) TotalQuantity() int64 {
	var n int64
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
