package triage

import (
	"context"
	"fmt"
	"strings"
)

const (
	ruleSystemPrompt = "Determine if the email matches the given rule. Respond with 'true' or 'false'."

	ruleMaxTokens = 50
)

// EvaluateRule asks the model whether emailContent matches a free-text rule
// condition. Only a literal "true" reply (case-insensitive) counts as a
// match; errors and any other reply evaluate to false.
func EvaluateRule(ctx context.Context, client CompletionClient, condition, emailContent string) (bool, error) {
	user := fmt.Sprintf("Rule: %s\nEmail: %s", condition, emailContent)

	reply, err := client.Complete(ctx, ruleSystemPrompt, user, ruleMaxTokens)
	if err != nil {
		return false, fmt.Errorf("rule evaluation failed: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(reply), "true"), nil
}
