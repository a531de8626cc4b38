package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/storeline/backend/internal/application/trade"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	sales *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	var req tradeapp.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.sales.Create(c.Request.Context(), tc, principal.UserID(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	sale, err := h.sales.GetByID(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List handles GET /sales. ?mine=true limits it to the caller's sales.
func (h *SaleHandler) List(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	var f tradeapp.SaleListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	page, err := h.sales.List(c.Request.Context(), tc, principal.UserID(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Update handles PUT /sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req tradeapp.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.sales.UpdateHeader(c.Request.Context(), tc, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
