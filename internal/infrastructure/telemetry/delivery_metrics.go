package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	appnotification "github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/domain/notification"
)

// DeliveryMetrics records notification dispatch outcomes as OpenTelemetry
// counters, labelled by channel and outcome.
type DeliveryMetrics struct {
	attempts *Counter
}

// NewDeliveryMetrics creates the delivery metric instruments on the given meter
func NewDeliveryMetrics(meter metric.Meter) (*DeliveryMetrics, error) {
	attempts, err := NewCounter(meter,
		"notification_dispatch_attempts_total",
		"Completed notification dispatch attempts by channel and outcome",
		"{attempt}")
	if err != nil {
		return nil, err
	}

	return &DeliveryMetrics{attempts: attempts}, nil
}

// RecordDispatch counts one completed dispatch attempt
func (m *DeliveryMetrics) RecordDispatch(ctx context.Context, channel notification.Channel, outcome string) {
	m.attempts.Inc(ctx,
		AttrChannel.String(channel.String()),
		AttrDispatchOutcome.String(outcome),
	)
}

// Ensure DeliveryMetrics implements DispatchRecorder
var _ appnotification.DispatchRecorder = (*DeliveryMetrics)(nil)
