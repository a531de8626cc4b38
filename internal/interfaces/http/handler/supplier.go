package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/storeline/backend/internal/application/partner"
	"github.com/storeline/backend/internal/application/query"
)

// SupplierHandler handles supplier endpoints
type SupplierHandler struct {
	BaseHandler
	suppliers *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(suppliers *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var req partnerapp.SupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Create(c.Request.Context(), tc, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Get handles GET /suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	supplier, err := h.suppliers.GetByID(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var q query.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.suppliers.List(c.Request.Context(), tc, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req partnerapp.SupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Update(c.Request.Context(), tc, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete handles DELETE /suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.suppliers.Delete(c.Request.Context(), tc, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
