package shared

import "github.com/google/uuid"

// AggregateRoot is a tenant-owned entity that raises domain events
type AggregateRoot interface {
	Entity
	TenantOwned
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// TenantAggregateRoot is the base for documents (sales, purchases, returns).
// Events are held in memory only and published after the unit of work commits.
type TenantAggregateRoot struct {
	TenantEntity
	domainEvents []DomainEvent `gorm:"-"`
}

// NewTenantAggregateRoot creates an aggregate owned by the given tenant
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{TenantEntity: NewTenantEntity(tenantID)}
}

// AddDomainEvent adds a domain event to be published
func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
