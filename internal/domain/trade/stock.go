package trade

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
	"github.com/storeline/backend/internal/domain/inventory"
)

type stockLine struct {
	productID uuid.UUID
	quantity  int64
}

// ledgerEntries merges lines per product and orders them by product id so
// concurrent documents lock product rows in the same order.
func ledgerEntries(lines []stockLine, sign int64, typ inventory.TransactionType, ref inventory.ReferenceType, refID uuid.UUID) []inventory.Entry {
	totals := make(map[uuid.UUID]int64, len(lines))
	for _, l := range lines {
		totals[l.productID] += l.quantity
	}
	entries := make([]inventory.Entry, 0, len(totals))
	for productID, qty := range totals {
		entries = append(entries, inventory.Entry{
			ProductID:     productID,
			Delta:         sign * qty,
			Type:          typ,
			ReferenceType: ref,
			ReferenceID:   refID,
		})
	}
	slices.SortFunc(entries, func(a, b inventory.Entry) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})
	return entries
}
