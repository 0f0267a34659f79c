package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appnotification "github.com/storefront/backend/internal/application/notification"
	"github.com/storefront/backend/internal/domain/notification"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(context.Background()))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounter_AddAndInc(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	counter, err := NewCounter(mp.Meter("test"), "test_counter", "a test counter", "{item}")
	require.NoError(t, err)

	counter.Add(context.Background(), 5, AttrChannel.String("email"))
	counter.Inc(context.Background())
}

func TestHistogram_Record(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	hist, err := NewHistogram(mp.Meter("test"), HistogramOpts{
		Name:        "test_duration",
		Description: "a test histogram",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	require.NoError(t, err)

	hist.Record(context.Background(), 0.05)
	hist.RecordDuration(context.Background(), 20*time.Millisecond)
}

func TestGauge_Record(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	gauge, err := NewGauge(mp.Meter("test"), "test_gauge", "a test gauge", "{job}")
	require.NoError(t, err)

	gauge.Record(context.Background(), 42)
}

func TestDeliveryMetrics_RecordDispatch(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	metrics, err := NewDeliveryMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var _ appnotification.DispatchRecorder = metrics

	metrics.RecordDispatch(context.Background(), notification.ChannelEmail, appnotification.OutcomeSent)
	metrics.RecordDispatch(context.Background(), notification.ChannelSMS, appnotification.OutcomeFailed)
}
