package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/storeline/backend/internal/application/trade"
)

// ReturnHandler handles customer and supplier return endpoints
type ReturnHandler struct {
	BaseHandler
	returns *tradeapp.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns *tradeapp.ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// Create handles POST /returns
func (h *ReturnHandler) Create(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	var req tradeapp.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.returns.Create(c.Request.Context(), tc, principal.UserID(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// Get handles GET /returns/:id
func (h *ReturnHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	ret, err := h.returns.GetByID(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// List handles GET /returns
func (h *ReturnHandler) List(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var f tradeapp.ReturnListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	page, err := h.returns.List(c.Request.Context(), tc, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Approve handles POST /returns/:id/approve
func (h *ReturnHandler) Approve(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	ret, err := h.returns.Approve(c.Request.Context(), tc, principal.UserID(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// Reject handles POST /returns/:id/reject
func (h *ReturnHandler) Reject(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	ret, err := h.returns.Reject(c.Request.Context(), tc, principal.UserID(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
