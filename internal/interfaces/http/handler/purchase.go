package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storeline/backend/internal/application/query"
	tradeapp "github.com/storeline/backend/internal/application/trade"
)

// PurchaseHandler handles purchase invoice endpoints
type PurchaseHandler struct {
	BaseHandler
	purchases *tradeapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases *tradeapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Create handles POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	var req tradeapp.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	invoice, err := h.purchases.Create(c.Request.Context(), tc, principal.UserID(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	invoice, err := h.purchases.GetByID(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var q query.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.purchases.List(c.Request.Context(), tc, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Update handles PUT /purchases/:id
func (h *PurchaseHandler) Update(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req tradeapp.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	invoice, err := h.purchases.UpdateHeader(c.Request.Context(), tc, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
