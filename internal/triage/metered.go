package triage

import (
	"context"
	"time"

	"github.com/teemow/inboxtriage/internal/instrumentation"
)

// Metered wraps a CompletionClient so every request is counted and timed
// under the given operation label ("classify", "summarize", "rule"). A nil
// metrics handle yields an unmetered passthrough.
func Metered(client CompletionClient, metrics *instrumentation.Metrics, operation string) CompletionClient {
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &meteredClient{
		inner:     client,
		metrics:   metrics,
		operation: operation,
	}
}

type meteredClient struct {
	inner     CompletionClient
	metrics   *instrumentation.Metrics
	operation string
}

func (m *meteredClient) Complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	start := time.Now()
	reply, err := m.inner.Complete(ctx, system, user, maxTokens)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	m.metrics.RecordCompletionRequest(ctx, m.operation, status, time.Since(start))

	return reply, err
}
