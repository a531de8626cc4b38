package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/storeline/backend/internal/application/finance"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenses *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Create handles POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	tc, principal, ok := h.Actor(c)
	if !ok {
		return
	}
	var req financeapp.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	expense, err := h.expenses.Create(c.Request.Context(), tc, principal.UserID(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Get handles GET /expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	expense, err := h.expenses.GetByID(c.Request.Context(), tc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List handles GET /expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var f financeapp.ExpenseListFilter
	if !h.BindQuery(c, &f) {
		return
	}
	page, err := h.expenses.List(c.Request.Context(), tc, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Update handles PUT /expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req financeapp.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	expense, err := h.expenses.Update(c.Request.Context(), tc, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete handles DELETE /expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.expenses.Delete(c.Request.Context(), tc, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
