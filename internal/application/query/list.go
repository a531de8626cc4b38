// Package query holds request shapes shared by list endpoints.
package query

import (
	"time"

	"github.com/storeline/backend/internal/domain/shared"
)

// ListQuery is bound from the query string of list endpoints
type ListQuery struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string     `form:"search" binding:"max=100"`
	OrderBy  string     `form:"order_by" binding:"max=50"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// Filter converts the query to a normalized repository filter
func (q ListQuery) Filter() shared.Filter {
	f := shared.DefaultFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		f.OrderDir = q.OrderDir
	}
	f.Search = q.Search
	f.From = q.From
	f.To = q.To
	return f.Normalize()
}
