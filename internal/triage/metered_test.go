package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/inboxtriage/internal/instrumentation"
)

func newTestMetrics(t *testing.T) (*instrumentation.Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	metrics, err := instrumentation.NewMetrics(meter)
	require.NoError(t, err)
	return metrics, reader
}

// completionRequestCount sums the completion_requests_total data points
// matching the given operation and status labels.
func completionRequestCount(t *testing.T, reader *sdkmetric.ManualReader, operation, status string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "completion_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "completion_requests_total has unexpected data type %T", m.Data)
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("operation"))
				st, _ := dp.Attributes.Value(attribute.Key("status"))
				if op.AsString() == operation && st.AsString() == status {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetered_RecordsRequests(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	fake := &fakeCompletion{replies: []string{"Urgent", "Important"}}

	client := Metered(fake, metrics, "classify")

	reply, err := client.Complete(context.Background(), "system", "user", 50)
	require.NoError(t, err)
	assert.Equal(t, "Urgent", reply)

	_, err = client.Complete(context.Background(), "system", "user", 50)
	require.NoError(t, err)

	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, int64(2), completionRequestCount(t, reader, "classify", instrumentation.StatusSuccess))
}

func TestMetered_RecordsErrors(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	wantErr := errors.New("rate limited")
	fake := &fakeCompletion{err: wantErr}

	client := Metered(fake, metrics, "summarize")

	_, err := client.Complete(context.Background(), "system", "user", 300)
	require.ErrorIs(t, err, wantErr)

	assert.Equal(t, int64(1), completionRequestCount(t, reader, "summarize", instrumentation.StatusError))
	assert.Zero(t, completionRequestCount(t, reader, "summarize", instrumentation.StatusSuccess))
}

func TestMetered_NilMetricsIsPassthrough(t *testing.T) {
	fake := &fakeCompletion{replies: []string{"Low Priority"}}

	reply, err := Metered(fake, nil, "classify").Complete(context.Background(), "system", "user", 50)
	require.NoError(t, err)
	assert.Equal(t, "Low Priority", reply)
	assert.Equal(t, 1, fake.calls)
}
