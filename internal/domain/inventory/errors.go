package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
)

// InsufficientStockError names the product and how many units are missing.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int64
	Available   int64
}

// Shortfall is the number of units that could not be supplied
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID.String()
	}
	return fmt.Sprintf("Insufficient stock for %s: requested %d, available %d, short by %d",
		name, e.Requested, e.Available, e.Shortfall())
}

// Is makes errors.Is(err, shared.ErrInsufficientStock) hold
func (e *InsufficientStockError) Is(target error) bool {
	return target == shared.ErrInsufficientStock
}

// As exposes the error as a DomainError carrying the detailed message
func (e *InsufficientStockError) As(target any) bool {
	if de, ok := target.(**shared.DomainError); ok {
		*de = shared.NewDomainError(shared.ErrInsufficientStock.Code, e.Error())
		return true
	}
	return false
}
