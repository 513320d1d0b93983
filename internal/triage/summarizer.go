package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/inboxtriage/internal/gmail"
	"github.com/teemow/inboxtriage/internal/logging"
)

const (
	summarizeSystemPrompt = "Create a concise summary of today's emails, " +
		"highlighting the most important messages and urgent matters."

	summarizeMaxTokens = 300

	// EmptySummary is returned for an empty mailbox without calling the
	// remote endpoint.
	EmptySummary = "No emails to summarize for today."

	// FallbackSummary is returned on any completion failure.
	FallbackSummary = "Unable to generate summary at this time."
)

// Summarizer produces a short natural-language digest of classified
// messages.
type Summarizer struct {
	client CompletionClient
	logger *slog.Logger
}

// NewSummarizer creates a Summarizer using the injected completion client.
func NewSummarizer(client CompletionClient, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		client: client,
		logger: logging.WithComponent(logger, "summarizer"),
	}
}

// Summarize returns a digest of the classified messages. An empty input
// short-circuits to EmptySummary with no remote call; any failure degrades
// to FallbackSummary. The output is trimmed but otherwise unvalidated.
func (s *Summarizer) Summarize(ctx context.Context, msgs []*gmail.Message) string {
	if len(msgs) == 0 {
		return EmptySummary
	}

	var b strings.Builder
	for _, msg := range msgs {
		fmt.Fprintf(&b, "Subject: %s\nFrom: %s\nCategory: %s\n\n", msg.Subject, msg.From, msg.Category)
	}

	reply, err := s.client.Complete(ctx, summarizeSystemPrompt, b.String(), summarizeMaxTokens)
	if err != nil {
		s.logger.Warn("summary generation failed, using fallback", logging.Err(err))
		return FallbackSummary
	}
	return strings.TrimSpace(reply)
}
