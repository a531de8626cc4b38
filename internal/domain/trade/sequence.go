package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentKind identifies a numbered document family
type DocumentKind string

const (
	DocumentSale     DocumentKind = "sale"
	DocumentPurchase DocumentKind = "purchase"
)

// Prefix returns the invoice number prefix for the kind
func (k DocumentKind) Prefix() string {
	switch k {
	case DocumentSale:
		return "INV"
	case DocumentPurchase:
		return "PUR"
	}
	return ""
}

// IsValid returns true if the kind is known
func (k DocumentKind) IsValid() bool {
	return k.Prefix() != ""
}

// DayKey returns the YYYYMMDD counter key for t in its own location.
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// FormatDocumentNumber renders PREFIX-YYYYMMDD-NNNN. The counter is padded to
// four digits and widens past 9999 rather than wrapping.
func FormatDocumentNumber(kind DocumentKind, day time.Time, value int64) string {
	return fmt.Sprintf("%s-%s-%04d", kind.Prefix(), DayKey(day), value)
}

// DocumentSequence is the per tenant, per kind, per day counter row
type DocumentSequence struct {
	TenantID     uuid.UUID    `gorm:"type:uuid;primaryKey"`
	DocumentKind DocumentKind `gorm:"type:varchar(20);primaryKey"`
	Day          string       `gorm:"type:varchar(8);primaryKey"`
	Value        int64        `gorm:"not null;default:0"`
	UpdatedAt    time.Time    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// SequenceAllocator issues document numbers for one tenant. Next must run
// inside the transaction that persists the document so an aborted document
// releases nothing and two committed documents never share a number.
type SequenceAllocator interface {
	Next(ctx context.Context, kind DocumentKind, day time.Time) (string, error)
}
