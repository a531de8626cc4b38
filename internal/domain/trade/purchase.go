package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
)

// PurchaseInvoice records stock received from a supplier
type PurchaseInvoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber string          `gorm:"size:32;not null" json:"invoice_number"`
	SupplierID    *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	PurchaseDate  time.Time       `gorm:"not null;index" json:"purchase_date"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseInvoiceID" json:"items,omitempty"`
}

// TableName returns the table name for GORM
func (PurchaseInvoice) TableName() string {
	return "purchase_invoices"
}

// PurchaseItem is a line of a purchase invoice
type PurchaseItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_invoice_id"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// PurchaseHeader carries the editable header fields of a purchase
type PurchaseHeader struct {
	SupplierID   *uuid.UUID
	PurchaseDate time.Time
	Notes        string
}

// NewPurchaseInvoice starts an invoice without lines or number
func NewPurchaseInvoice(tenantID, createdBy uuid.UUID, header PurchaseHeader) (*PurchaseInvoice, error) {
	if createdBy == uuid.Nil {
		return nil, shared.Invalid("Purchase must record its creator")
	}
	if header.PurchaseDate.IsZero() {
		return nil, shared.Invalid("Purchase date is required")
	}
	return &PurchaseInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SupplierID:          header.SupplierID,
		PurchaseDate:        header.PurchaseDate,
		Notes:               header.Notes,
		CreatedBy:           createdBy,
		Total:               decimal.Zero,
	}, nil
}

// AddItem appends a received line and updates the total
func (p *PurchaseInvoice) AddItem(productID uuid.UUID, quantity int64, unitCost decimal.Decimal) error {
	if productID == uuid.Nil {
		return shared.Invalid("Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.Invalid("Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.Invalid("Unit cost cannot be negative")
	}
	line := unitCost.Mul(decimal.NewFromInt(quantity))
	p.Items = append(p.Items, PurchaseItem{
		ID:                uuid.New(),
		PurchaseInvoiceID: p.ID,
		ProductID:         productID,
		Quantity:          quantity,
		UnitCost:          unitCost,
		LineTotal:         line,
		CreatedAt:         time.Now(),
	})
	p.Total = p.Total.Add(line)
	return nil
}

// Confirm assigns the allocated number
func (p *PurchaseInvoice) Confirm(invoiceNumber string) error {
	if len(p.Items) == 0 {
		return shared.Invalid("Purchase must have at least one item")
	}
	p.InvoiceNumber = invoiceNumber
	p.AddDomainEvent(NewPurchaseReceivedEvent(p))
	return nil
}

// UpdateHeader edits supplier, date and notes. The date stays on the day
// encoded in the invoice number.
func (p *PurchaseInvoice) UpdateHeader(h PurchaseHeader) error {
	if h.PurchaseDate.IsZero() {
		return shared.Invalid("Purchase date is required")
	}
	if p.InvoiceNumber != "" && DayKey(h.PurchaseDate) != DayKey(p.PurchaseDate) {
		return shared.Invalid("Purchase date cannot move to another day once the invoice number is issued")
	}
	p.SupplierID = h.SupplierID
	p.PurchaseDate = h.PurchaseDate
	p.Notes = h.Notes
	p.UpdatedAt = time.Now()
	return nil
}

// StockEntries returns one inbound ledger entry per product, sorted by product id
func (p *PurchaseInvoice) StockEntries() []inventory.Entry {
	lines := make([]stockLine, len(p.Items))
	for i, it := range p.Items {
		lines[i] = stockLine{productID: it.ProductID, quantity: it.Quantity}
	}
	return ledgerEntries(lines, 1, inventory.TransactionTypeIn, inventory.ReferencePurchase, p.ID)
}
