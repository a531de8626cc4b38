package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
)

// Tenant is the root of isolation. Every tenant-owned row references it by tenant_id.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a tenant with a caller-chosen id. Onboarding clients
// generate the id so the same value can be sent on register and login.
func NewTenant(id uuid.UUID, name string) (*Tenant, error) {
	if id == uuid.Nil {
		return nil, shared.Invalid("Tenant ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Invalid("Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.Invalid("Tenant name cannot exceed 200 characters")
	}
	now := time.Now()
	return &Tenant{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}
