package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/shared"
)

// Repositories in this package are bound to one tenant when constructed, so
// none of the methods take a tenant id.

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	CreatedBy *uuid.UUID
}

// SaleRepository persists sales
type SaleRepository interface {
	// FindByID loads a sale with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	// ItemsOf loads the lines of a sale through a join on the owning sale's tenant
	ItemsOf(ctx context.Context, saleID uuid.UUID) ([]SaleItem, error)
	List(ctx context.Context, filter SaleFilter) ([]Sale, int64, error)
	// Create inserts the sale and its items
	Create(ctx context.Context, sale *Sale) error
	UpdateHeader(ctx context.Context, sale *Sale) error
	// SoldQuantity returns the units of a product sold on a sale
	SoldQuantity(ctx context.Context, saleID, productID uuid.UUID) (int64, error)
}

// PurchaseRepository persists purchase invoices
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseInvoice, error)
	ItemsOf(ctx context.Context, invoiceID uuid.UUID) ([]PurchaseItem, error)
	List(ctx context.Context, filter shared.Filter) ([]PurchaseInvoice, int64, error)
	Create(ctx context.Context, invoice *PurchaseInvoice) error
	UpdateHeader(ctx context.Context, invoice *PurchaseInvoice) error
}

// ReturnFilter narrows return listings
type ReturnFilter struct {
	shared.Filter
	Kind   ReturnKind
	Status ReturnStatus
}

// ReturnRepository persists returns
type ReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Return, error)
	List(ctx context.Context, filter ReturnFilter) ([]Return, int64, error)
	Create(ctx context.Context, ret *Return) error
	// SaveDecision persists a decided return only if the stored row is still
	// pending. A lost race yields shared.ErrInvalidReturnState.
	SaveDecision(ctx context.Context, ret *Return) error
	// ReturnedQuantity sums pending and approved customer returns of a product on a sale
	ReturnedQuantity(ctx context.Context, saleID, productID uuid.UUID) (int64, error)
}
