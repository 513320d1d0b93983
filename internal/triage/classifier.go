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
	classifySystemPrompt = "You are an email analyzer. Categorize the following email as " +
		"'Urgent', 'Important', or 'Low Priority' based on its content and subject."

	batchSystemPrompt = "You are an email analyzer. For each email below, separated by '---', " +
		"reply with one of 'Urgent', 'Important', or 'Low Priority'. " +
		"Reply with a comma-separated list of categories in the same order as the emails, nothing else."

	// classifyContentChars bounds how much body text goes into the prompt.
	classifyContentChars = 500

	classifyMaxTokens = 50
	batchDelimiter    = "\n---\n"
)

// Classifier assigns an urgency category to messages via the completion
// endpoint.
type Classifier struct {
	client CompletionClient
	logger *slog.Logger
}

// NewClassifier creates a Classifier using the injected completion client.
func NewClassifier(client CompletionClient, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		client: client,
		logger: logging.WithComponent(logger, "classifier"),
	}
}

// Classify returns a category for one message. Any transport or API error,
// and any reply outside the three category literals, maps to Low Priority.
func (c *Classifier) Classify(ctx context.Context, msg *gmail.Message) Category {
	user := msg.Subject + " " + gmail.Truncate(msg.Body, classifyContentChars)

	reply, err := c.client.Complete(ctx, classifySystemPrompt, user, classifyMaxTokens)
	if err != nil {
		c.logger.Warn("classification failed, defaulting to low priority",
			logging.MessageID(msg.ID), logging.Err(err))
		return CategoryLowPriority
	}

	category := ParseCategory(reply)
	c.logger.Debug("message classified",
		logging.MessageID(msg.ID), logging.Category(category.String()))
	return category
}

// ClassifyBatch submits all messages in one request and zips the
// comma-separated reply back onto the input by position. The result is
// padded or truncated to match the input length, with unrecognized entries
// replaced by Low Priority.
//
// The ordering contract (reply order == input order) is asserted, not
// verified: a model that omits, reorders, or misformats entries silently
// yields Low Priority for the affected positions.
func (c *Classifier) ClassifyBatch(ctx context.Context, msgs []*gmail.Message) []Category {
	categories := make([]Category, len(msgs))
	for i := range categories {
		categories[i] = CategoryLowPriority
	}
	if len(msgs) == 0 {
		return categories
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString(batchDelimiter)
		}
		fmt.Fprintf(&b, "Subject: %s\n%s", msg.Subject, gmail.Truncate(msg.Body, classifyContentChars))
	}

	reply, err := c.client.Complete(ctx, batchSystemPrompt, b.String(), classifyMaxTokens*int64(len(msgs)))
	if err != nil {
		c.logger.Warn("batch classification failed, defaulting all to low priority",
			slog.Int("messages", len(msgs)), logging.Err(err))
		return categories
	}

	parts := strings.Split(reply, ",")
	for i := range categories {
		if i < len(parts) {
			categories[i] = ParseCategory(parts[i])
		}
	}
	return categories
}
