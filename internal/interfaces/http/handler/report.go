package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/storeline/backend/internal/application/report"
)

// ReportHandler serves tenant reports
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// SalesSummary handles GET /reports/sales-summary?from=2006-01-02&to=2006-01-02
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	tc, ok := h.Tenant(c)
	if !ok {
		return
	}
	var q reportapp.SummaryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	summary, err := h.reports.SalesSummary(c.Request.Context(), tc, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
