package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/inboxtriage/internal/gmail"
	"github.com/teemow/inboxtriage/internal/google"
	"github.com/teemow/inboxtriage/internal/logging"
	"github.com/teemow/inboxtriage/internal/triage"
)

func newTriageCmd() *cobra.Command {
	var (
		days        int
		maxResults  int64
		applyLabels bool
		debugMode   bool
	)

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Fetch, classify, and summarize recent mail once",
		Long: `Fetch recent Gmail messages, classify each by urgency, print the result,
and finish with a daily digest. Credentials come from the environment:

  GOOGLE_REFRESH_TOKEN, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET
  (optional GOOGLE_TOKEN_URI), and OPENAI_API_KEY.

A .env file in the working directory is loaded at startup. With
--apply-labels, each message is also labeled with its category in Gmail.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			logger := logging.Setup("text", debugMode)

			ctx := context.Background()

			creds, err := google.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			completion, err := triage.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"))
			if err != nil {
				return fmt.Errorf("failed to create completion client: %w", err)
			}

			client, err := gmail.NewClient(ctx, creds)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client: %w", err)
			}

			classifier := triage.NewClassifier(completion, logger)
			summarizer := triage.NewSummarizer(completion, logger)

			ids, err := client.ListRecent(ctx, days, maxResults)
			if err != nil {
				return fmt.Errorf("failed to list recent messages: %w", err)
			}

			messages := make([]*gmail.Message, 0, len(ids))
			for _, id := range ids {
				msg, err := client.FetchFull(ctx, id)
				if err != nil {
					logger.Warn("skipping message", logging.MessageID(id), logging.Err(err))
					continue
				}

				msg.Category = classifier.Classify(ctx, msg).String()
				messages = append(messages, msg)
				fmt.Printf("[%s] %s (%s)\n", msg.Category, msg.Subject, msg.From)

				if applyLabels {
					if err := client.ApplyLabel(ctx, msg.ID, msg.Category); err != nil {
						logger.Warn("failed to apply label", logging.MessageID(msg.ID), logging.Err(err))
					}
				}
			}

			fmt.Printf("\nProcessed %d of %d messages\n\n", len(messages), len(ids))
			fmt.Println(summarizer.Summarize(ctx, messages))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", gmail.DefaultWindowDays, "Fetch messages newer than this many days")
	cmd.Flags().Int64Var(&maxResults, "max-results", gmail.DefaultMaxResults, "Maximum number of messages to fetch")
	cmd.Flags().BoolVar(&applyLabels, "apply-labels", false, "Label each message with its category in Gmail")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}
