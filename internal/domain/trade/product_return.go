package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/inventory"
	"github.com/storeline/backend/internal/domain/shared"
)

// ReturnKind distinguishes customer returns (against a sale) from supplier returns
type ReturnKind string

const (
	ReturnKindCustomer ReturnKind = "customer"
	ReturnKindSupplier ReturnKind = "supplier"
)

// IsValid returns true if the kind is known
func (k ReturnKind) IsValid() bool {
	return k == ReturnKindCustomer || k == ReturnKindSupplier
}

// StockSign is the direction of the ledger entry an approved return records:
// supplier returns are inbound, customer returns outbound.
func (k ReturnKind) StockSign() int64 {
	if k == ReturnKindSupplier {
		return 1
	}
	return -1
}

// ReturnStatus is the state of a return
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "pending"
	ReturnStatusApproved ReturnStatus = "approved"
	ReturnStatusRejected ReturnStatus = "rejected"
)

// IsTerminal returns true once the return has been decided
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusApproved || s == ReturnStatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s ReturnStatus) CanTransitionTo(target ReturnStatus) bool {
	if s != ReturnStatusPending {
		return false
	}
	return target == ReturnStatusApproved || target == ReturnStatusRejected
}

// Return is a customer or supplier return of one product
type Return struct {
	shared.TenantAggregateRoot
	Kind                   ReturnKind   `gorm:"type:varchar(20);not null;index" json:"kind"`
	SaleID                 *uuid.UUID   `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	SupplierID             *uuid.UUID   `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	ProductID              uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity               int64        `gorm:"not null" json:"quantity"`
	Reason                 string       `gorm:"type:text" json:"reason"`
	Status                 ReturnStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	InventoryTransactionID *uuid.UUID   `gorm:"type:uuid" json:"inventory_transaction_id,omitempty"`
	CreatedBy              uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	DecidedBy              *uuid.UUID   `gorm:"type:uuid" json:"decided_by,omitempty"`
	DecidedAt              *time.Time   `json:"decided_at,omitempty"`
}

// TableName returns the table name for GORM
func (Return) TableName() string {
	return "product_returns"
}

// ReturnInput carries the fields of a new return
type ReturnInput struct {
	Kind       ReturnKind
	SaleID     *uuid.UUID
	SupplierID *uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	Reason     string
}

// NewReturn creates a pending return
func NewReturn(tenantID, createdBy uuid.UUID, in ReturnInput) (*Return, error) {
	if !in.Kind.IsValid() {
		return nil, shared.Invalid("Return kind must be customer or supplier")
	}
	switch in.Kind {
	case ReturnKindCustomer:
		if in.SaleID == nil || *in.SaleID == uuid.Nil {
			return nil, shared.Invalid("Customer return must reference a sale")
		}
		if in.SupplierID != nil {
			return nil, shared.Invalid("Customer return cannot reference a supplier")
		}
	case ReturnKindSupplier:
		if in.SupplierID == nil || *in.SupplierID == uuid.Nil {
			return nil, shared.Invalid("Supplier return must reference a supplier")
		}
		if in.SaleID != nil {
			return nil, shared.Invalid("Supplier return cannot reference a sale")
		}
	}
	if in.ProductID == uuid.Nil {
		return nil, shared.Invalid("Product ID cannot be empty")
	}
	if in.Quantity <= 0 {
		return nil, shared.Invalid("Return quantity must be positive")
	}
	if createdBy == uuid.Nil {
		return nil, shared.Invalid("Return must record its creator")
	}
	return &Return{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                in.Kind,
		SaleID:              in.SaleID,
		SupplierID:          in.SupplierID,
		ProductID:           in.ProductID,
		Quantity:            in.Quantity,
		Reason:              strings.TrimSpace(in.Reason),
		Status:              ReturnStatusPending,
		CreatedBy:           createdBy,
	}, nil
}

func (r *Return) decide(target ReturnStatus, by uuid.UUID, at time.Time) error {
	if !r.Status.CanTransitionTo(target) {
		return shared.ErrInvalidReturnState
	}
	r.Status = target
	r.DecidedBy = &by
	r.DecidedAt = &at
	r.UpdatedAt = at
	r.AddDomainEvent(NewReturnDecidedEvent(r))
	return nil
}

// Approve moves a pending return to approved. The caller records StockEntry
// in the same transaction and links it with LinkTransaction.
func (r *Return) Approve(by uuid.UUID, at time.Time) error {
	return r.decide(ReturnStatusApproved, by, at)
}

// Reject moves a pending return to rejected. It has no stock effect.
func (r *Return) Reject(by uuid.UUID, at time.Time) error {
	return r.decide(ReturnStatusRejected, by, at)
}

// StockEntry is the ledger entry recorded when the return is approved
func (r *Return) StockEntry() inventory.Entry {
	return inventory.Entry{
		ProductID:     r.ProductID,
		Delta:         r.Kind.StockSign() * r.Quantity,
		Type:          inventory.TransactionTypeReturn,
		ReferenceType: inventory.ReferenceReturn,
		ReferenceID:   r.ID,
	}
}

// LinkTransaction stores the ledger row produced by approval
func (r *Return) LinkTransaction(id uuid.UUID) {
	r.InventoryTransactionID = &id
}
