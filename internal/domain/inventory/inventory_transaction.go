package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// TransactionType represents the type of inventory transaction
type TransactionType string

const (
	// TransactionTypeIn is stock arriving (purchase, opening stock, repair upward)
	TransactionTypeIn TransactionType = "in"
	// TransactionTypeOut is stock leaving (sale)
	TransactionTypeOut TransactionType = "out"
	// TransactionTypeReturn is the stock effect of an approved return, in either direction
	TransactionTypeReturn TransactionType = "return"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIn, TransactionTypeOut, TransactionTypeReturn:
		return true
	}
	return false
}

// ReferenceType names the document a transaction came from
type ReferenceType string

const (
	ReferenceSale     ReferenceType = "sale"
	ReferencePurchase ReferenceType = "purchase"
	ReferenceReturn   ReferenceType = "return"
	ReferenceOpening  ReferenceType = "opening"
	ReferenceRepair   ReferenceType = "repair"
)

// ErrLedgerImmutable is returned when code attempts to change a recorded transaction.
var ErrLedgerImmutable = errors.New("inventory transactions are append-only")

// InventoryTransaction is an immutable record of a stock movement.
// Quantity is signed: the sum over a product equals Product.Quantity.
type InventoryTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_tenant_product,priority:1" json:"tenant_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_tenant_product,priority:2" json:"product_id"`
	Type          TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	BalanceAfter  int64           `gorm:"not null" json:"balance_after"`
	ReferenceType ReferenceType   `gorm:"type:varchar(20);not null;index:idx_inv_tx_reference,priority:1" json:"reference_type"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_inv_tx_reference,priority:2" json:"reference_id"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// OwnerTenantID returns the owning tenant
func (t *InventoryTransaction) OwnerTenantID() uuid.UUID {
	return t.TenantID
}

// AssignTenant sets the owning tenant
func (t *InventoryTransaction) AssignTenant(tenantID uuid.UUID) {
	t.TenantID = tenantID
}

// BeforeUpdate refuses any update of a recorded transaction
func (t *InventoryTransaction) BeforeUpdate(*gorm.DB) error {
	return ErrLedgerImmutable
}

// BeforeDelete refuses any deletion of a recorded transaction
func (t *InventoryTransaction) BeforeDelete(*gorm.DB) error {
	return ErrLedgerImmutable
}

// Entry is a requested stock movement.
type Entry struct {
	ProductID     uuid.UUID
	Delta         int64
	Type          TransactionType
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
}

// Validate checks the entry is well formed
func (e Entry) Validate() error {
	if e.ProductID == uuid.Nil {
		return shared.Invalid("Product ID cannot be empty")
	}
	if e.Delta == 0 {
		return shared.Invalid("Stock movement cannot be zero")
	}
	if !e.Type.IsValid() {
		return shared.Invalid("Invalid inventory transaction type")
	}
	switch e.Type {
	case TransactionTypeIn:
		if e.Delta < 0 {
			return shared.Invalid("Inbound movement must be positive")
		}
	case TransactionTypeOut:
		if e.Delta > 0 {
			return shared.Invalid("Outbound movement must be negative")
		}
	}
	if e.ReferenceType == "" || e.ReferenceID == uuid.Nil {
		return shared.Invalid("Stock movement must reference a document")
	}
	return nil
}

// NewTransaction builds the ledger row for an accepted entry
func NewTransaction(tenantID uuid.UUID, e Entry, balanceAfter int64) *InventoryTransaction {
	return &InventoryTransaction{
		ID:            uuid.New(),
		TenantID:      tenantID,
		ProductID:     e.ProductID,
		Type:          e.Type,
		Quantity:      e.Delta,
		BalanceAfter:  balanceAfter,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     time.Now(),
	}
}
