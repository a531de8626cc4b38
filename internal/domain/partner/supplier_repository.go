package partner

import "github.com/storeline/backend/internal/domain/shared"

// SupplierRepository persists suppliers for one tenant
type SupplierRepository interface {
	shared.CrudRepository[Supplier]
}
