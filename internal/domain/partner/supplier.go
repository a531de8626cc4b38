package partner

import (
	"net/mail"
	"strings"
	"time"

	"github.com/storeline/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Supplier is a tenant-owned vendor that purchases and supplier returns refer to
type Supplier struct {
	shared.TenantEntity
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`
	ContactName string         `gorm:"type:varchar(100)" json:"contact_name"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone"`
	Email       string         `gorm:"type:varchar(200)" json:"email"`
	Address     string         `gorm:"type:text" json:"address"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierInput carries the editable supplier fields
type SupplierInput struct {
	Name        string
	ContactName string
	Phone       string
	Email       string
	Address     string
}

// Validate checks the editable fields
func (in SupplierInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.Invalid("Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return shared.Invalid("Supplier name cannot exceed 200 characters")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return shared.Invalid("Invalid supplier email")
		}
	}
	return nil
}

// NewSupplier creates a supplier
func NewSupplier(in SupplierInput) (*Supplier, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s := &Supplier{TenantEntity: shared.TenantEntity{BaseEntity: shared.NewBaseEntity()}}
	s.apply(in)
	return s, nil
}

// Update replaces the editable fields
func (s *Supplier) Update(in SupplierInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	s.apply(in)
	s.UpdatedAt = time.Now()
	return nil
}

func (s *Supplier) apply(in SupplierInput) {
	s.Name = strings.TrimSpace(in.Name)
	s.ContactName = strings.TrimSpace(in.ContactName)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Email = strings.TrimSpace(in.Email)
	s.Address = in.Address
}
