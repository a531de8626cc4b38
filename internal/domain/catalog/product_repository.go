package catalog

import (
	"context"
	"time"

	"github.com/storeline/backend/internal/domain/shared"
)

// ProductRepository persists products for one tenant. Update never writes
// quantity; stock changes go through the inventory ledger.
type ProductRepository interface {
	shared.CrudRepository[Product]
	// AlertCandidates returns products that are low on stock or expire within
	// their alert window relative to now, including expired ones.
	AlertCandidates(ctx context.Context, now time.Time) ([]Product, error)
}
