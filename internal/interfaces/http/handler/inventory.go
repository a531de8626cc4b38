package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/storeline/backend/internal/application/inventory"
)

// InventoryHandler serves the stock ledger, alerts and reconciliation
type InventoryHandler struct {
	BaseHandler
	inventory *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// ListTransactions handles GET /inventory/transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var f inventoryapp.TransactionListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	page, err := h.inventory.ListTransactions(c.Request.Context(), tc, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Alerts handles GET /inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	alerts, err := h.inventory.Alerts(c.Request.Context(), tc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

// Reconcile handles GET /inventory/products/:id/reconcile
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	result, err := h.inventory.Reconcile(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Repair handles POST /inventory/products/:id/repair
func (h *InventoryHandler) Repair(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	result, err := h.inventory.Repair(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
