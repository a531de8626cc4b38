package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("business metrics: meter cannot be nil")

// BusinessMetrics counts document and stock outcomes
type BusinessMetrics struct {
	documentsCreated metric.Int64Counter
	returnsDecided   metric.Int64Counter
	stockRejections  metric.Int64Counter
	sequenceRetries  metric.Int64Counter
}

// NewBusinessMetrics registers the counters on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	var (
		bm  BusinessMetrics
		err error
	)
	counters := []struct {
		target      *metric.Int64Counter
		name, descr string
	}{
		{&bm.documentsCreated, "retail.documents.created", "Number of committed sales and purchases"},
		{&bm.returnsDecided, "retail.returns.decided", "Number of approved or rejected returns"},
		{&bm.stockRejections, "retail.stock.rejections", "Number of movements rejected for insufficient stock"},
		{&bm.sequenceRetries, "retail.sequence.retries", "Number of retried document number allocations"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.descr), metric.WithUnit("{count}"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}
	return &bm, nil
}

// RecordDocumentCreated counts a committed document of kind
func (m *BusinessMetrics) RecordDocumentCreated(ctx context.Context, tenantID uuid.UUID, kind string) {
	m.documentsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("document_kind", kind),
	))
}

// RecordReturnDecided counts a return decision
func (m *BusinessMetrics) RecordReturnDecided(ctx context.Context, tenantID uuid.UUID, kind, status string) {
	m.returnsDecided.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("return_kind", kind),
		attribute.String("status", status),
	))
}

// RecordStockRejection counts an oversell attempt
func (m *BusinessMetrics) RecordStockRejection(ctx context.Context, tenantID uuid.UUID) {
	m.stockRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant_id", tenantID.String())))
}

// RecordSequenceRetry counts a retried allocation attempt
func (m *BusinessMetrics) RecordSequenceRetry(ctx context.Context, kind string) {
	m.sequenceRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("document_kind", kind)))
}
