package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/application/query"
	"github.com/storeline/backend/internal/domain/catalog"
	"github.com/storeline/backend/internal/domain/inventory"
)

// TransactionListFilter narrows the ledger listing
type TransactionListFilter struct {
	query.ListQuery
	ProductID     string `form:"product_id" binding:"omitempty,uuid"`
	ReferenceType string `form:"reference_type" binding:"omitempty,oneof=sale purchase return opening repair"`
}

// TransactionResponse represents a ledger row in API responses
type TransactionResponse struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	Type          string    `json:"type"`
	Quantity      int64     `json:"quantity"`
	BalanceAfter  int64     `json:"balance_after"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   uuid.UUID `json:"reference_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToTransactionResponse converts a ledger row
func ToTransactionResponse(t *inventory.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		ProductID:     t.ProductID,
		Type:          t.Type.String(),
		Quantity:      t.Quantity,
		BalanceAfter:  t.BalanceAfter,
		ReferenceType: string(t.ReferenceType),
		ReferenceID:   t.ReferenceID,
		CreatedAt:     t.CreatedAt,
	}
}

// ProductAlert is a product needing attention
type ProductAlert struct {
	ProductID       uuid.UUID  `json:"product_id"`
	Name            string     `json:"name"`
	SKU             string     `json:"sku"`
	Quantity        int64      `json:"quantity"`
	MinStockAlert   int64      `json:"min_stock_alert"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	DaysUntilExpiry *int       `json:"days_until_expiry,omitempty"`
}

func toProductAlert(p *catalog.Product, now time.Time) ProductAlert {
	a := ProductAlert{
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Quantity:      p.Quantity,
		MinStockAlert: p.MinStockAlert,
		ExpiryDate:    p.ExpiryDate,
	}
	if days, ok := p.DaysUntilExpiry(now); ok {
		a.DaysUntilExpiry = &days
	}
	return a
}

// AlertsResponse groups alerting products. A product may appear in more than one group.
type AlertsResponse struct {
	LowStock     []ProductAlert `json:"low_stock"`
	ExpiringSoon []ProductAlert `json:"expiring_soon"`
	Expired      []ProductAlert `json:"expired"`
}

// ReconciliationResponse reports the cached quantity against the ledger
type ReconciliationResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	CachedQuantity int64     `json:"cached_quantity"`
	LedgerQuantity int64     `json:"ledger_quantity"`
	Drift          int64     `json:"drift"`
	Consistent     bool      `json:"consistent"`
	Repaired       bool      `json:"repaired"`
}

func toReconciliationResponse(r inventory.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ProductID:      r.ProductID,
		CachedQuantity: r.Cached,
		LedgerQuantity: r.LedgerSum,
		Drift:          r.Drift(),
		Consistent:     r.Consistent(),
		Repaired:       r.Repaired,
	}
}
