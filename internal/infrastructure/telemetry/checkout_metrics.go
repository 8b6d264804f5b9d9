package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Attribute keys used by checkout metrics
var (
	AttrUnitKind    = attribute.Key("unit_kind")
	AttrOutcome     = attribute.Key("outcome")
	AttrOrderResult = attribute.Key("result")
)

// Order submission results
const (
	OrderResultCreated = "created"
	OrderResultFailed  = "failed"
	OrderResultSkipped = "skipped"
)

// CheckoutMetrics counts dispatch attempts and order submissions.
// A nil *CheckoutMetrics records nothing.
type CheckoutMetrics struct {
	dispatchTotal *Counter
	orderTotal    *Counter
	bulkDuration  *Histogram
}

// NewCheckoutMetrics registers the checkout instruments on meter.
func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	dispatchTotal, err := NewCounter(meter,
		"storefront_dispatch_total",
		"Dispatch units processed, by kind and outcome",
		"{units}")
	if err != nil {
		return nil, err
	}
	orderTotal, err := NewCounter(meter,
		"storefront_order_submissions_total",
		"Order submissions, by result",
		"{orders}")
	if err != nil {
		return nil, err
	}
	bulkDuration, err := NewHistogram(meter,
		"storefront_bulk_dispatch_duration_seconds",
		"Wall time of a bulk dispatch including pacing delays",
		"s", 1, 2, 5, 10, 30, 60, 120)
	if err != nil {
		return nil, err
	}
	return &CheckoutMetrics{
		dispatchTotal: dispatchTotal,
		orderTotal:    orderTotal,
		bulkDuration:  bulkDuration,
	}, nil
}

// RecordDispatch counts one dispatch unit.
func (m *CheckoutMetrics) RecordDispatch(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.dispatchTotal.Inc(ctx, AttrUnitKind.String(kind), AttrOutcome.String(outcome))
}

// RecordOrder counts one order submission.
func (m *CheckoutMetrics) RecordOrder(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.orderTotal.Inc(ctx, AttrOrderResult.String(result))
}

// RecordBulkDuration records how long a bulk dispatch took.
func (m *CheckoutMetrics) RecordBulkDuration(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.bulkDuration.RecordDuration(ctx, d)
}
