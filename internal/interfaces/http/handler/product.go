package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storeline/backend/internal/application/catalog"
	"github.com/storeline/backend/internal/application/query"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), tc, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var q query.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	page, err := h.products.List(c.Request.Context(), tc, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), tc, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), tc, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
