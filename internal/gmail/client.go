package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/inboxtriage/internal/google"
)

// Client wraps the Gmail Users service for one credential set.
type Client struct {
	svc *gmail.UsersService

	// now is stubbed in tests to pin the list query window.
	now func() time.Time
}

// NewClient creates a Gmail client authenticated with the given credentials.
func NewClient(ctx context.Context, creds *google.CredentialSet) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(creds.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users, now: time.Now}, nil
}

// ListRecent returns the identifiers of messages newer than
// now - windowDays, capped at maxResults. Ordering is provider-defined and
// not guaranteed chronological. Returns ErrAuthExpired when the token is
// rejected and ErrTransport on any other failure; both are non-fatal to the
// caller, which degrades to an empty list.
func (c *Client) ListRecent(ctx context.Context, windowDays int, maxResults int64) ([]string, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	threshold := c.now().AddDate(0, 0, -windowDays)
	query := "after:" + threshold.Format("2006/01/02")

	var ids []string
	pageToken := ""
	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, wrapAPIError("list messages", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// FetchFull retrieves one message's headers and body. The returned Message
// has no category; headers fall back to placeholders and never fail the
// fetch.
func (c *Client) FetchFull(ctx context.Context, messageID string) (*Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(fmt.Sprintf("get message %s", messageID), err)
	}
	return messageFromAPI(msg), nil
}

// messageFromAPI converts an API message into the triage representation,
// applying header placeholders and body normalization.
func messageFromAPI(msg *gmail.Message) *Message {
	m := &Message{
		ID:      msg.Id,
		Subject: headerOrDefault(msg, "Subject", DefaultSubject),
		From:    headerOrDefault(msg, "From", DefaultSender),
		Date:    headerOrDefault(msg, "Date", DefaultDate),
	}
	m.Body = NormalizeText(ExtractBody(msg.Payload))
	return m
}

// headerOrDefault looks up a header case-insensitively, falling back to a
// placeholder when absent or empty.
func headerOrDefault(msg *gmail.Message, name, fallback string) string {
	if msg.Payload == nil {
		return fallback
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) && h.Value != "" {
			return h.Value
		}
	}
	return fallback
}

// ApplyLabel attaches the named label to a message, creating the label if it
// does not exist yet.
func (c *Client) ApplyLabel(ctx context.Context, messageID, labelName string) error {
	labelID, err := c.getOrCreateLabel(ctx, labelName)
	if err != nil {
		return err
	}

	_, err = c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return wrapAPIError(fmt.Sprintf("apply label to %s", messageID), err)
	}
	return nil
}

// getOrCreateLabel resolves a label name to its id, matching existing labels
// case-insensitively.
func (c *Client) getOrCreateLabel(ctx context.Context, name string) (string, error) {
	res, err := c.svc.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", wrapAPIError("list labels", err)
	}
	for _, l := range res.Labels {
		if strings.EqualFold(l.Name, name) {
			return l.Id, nil
		}
	}

	created, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", wrapAPIError(fmt.Sprintf("create label %s", name), err)
	}
	return created.Id, nil
}

// wrapAPIError maps a Gmail API failure onto the package error taxonomy.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s: %v", ErrAuthExpired, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
