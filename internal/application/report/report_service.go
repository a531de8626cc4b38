package report

import (
	"context"
	"time"

	"github.com/storeline/backend/internal/application/uow"
	"github.com/storeline/backend/internal/domain/report"
	"github.com/storeline/backend/internal/domain/shared"
)

// defaultWindow is used when the caller omits the start date
const defaultWindow = 30 * 24 * time.Hour

// SummaryQuery is bound from the sales-summary query string. To is
// inclusive at day granularity.
type SummaryQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// Period turns the query into a half-open range ending after the To day
func (q SummaryQuery) Period(now time.Time) report.Period {
	end := startOfDay(now).AddDate(0, 0, 1)
	if q.To != nil {
		end = startOfDay(*q.To).AddDate(0, 0, 1)
	}
	start := end.Add(-defaultWindow)
	if q.From != nil {
		start = startOfDay(*q.From)
	}
	return report.Period{From: start, To: end}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ReportService serves aggregate reports
type ReportService struct {
	uow uow.UnitOfWork
	now func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(unit uow.UnitOfWork) *ReportService {
	return &ReportService{uow: unit, now: time.Now}
}

// SalesSummary aggregates the tenant's sales and expenses over the period
func (s *ReportService) SalesSummary(ctx context.Context, tc shared.TenantContext, q SummaryQuery) (*report.SalesSummary, error) {
	period := q.Period(s.now())
	if err := period.Validate(); err != nil {
		return nil, err
	}
	var totals report.SalesTotals
	err := s.uow.Read(ctx, tc, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		totals, err = repos.Reports().SalesTotals(ctx, period)
		return err
	})
	if err != nil {
		return nil, err
	}
	summary := report.NewSalesSummary(period, totals)
	return &summary, nil
}
