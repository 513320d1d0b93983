package gmail

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func TestMessageFromAPI(t *testing.T) {
	tests := []struct {
		name        string
		msg         *gmail.Message
		wantSubject string
		wantFrom    string
		wantDate    string
		wantBody    string
	}{
		{
			name: "all headers present",
			msg: &gmail.Message{
				Id: "msg-1",
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "Quarterly report"},
						{Name: "From", Value: "boss@example.com"},
						{Name: "Date", Value: "Mon, 02 Sep 2024 10:00:00 +0000"},
					},
					Body: &gmail.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte("please review")),
					},
				},
			},
			wantSubject: "Quarterly report",
			wantFrom:    "boss@example.com",
			wantDate:    "Mon, 02 Sep 2024 10:00:00 +0000",
			wantBody:    "please review",
		},
		{
			name: "headers matched case-insensitively",
			msg: &gmail.Message{
				Id: "msg-2",
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "subject", Value: "lowercase header"},
						{Name: "FROM", Value: "shouty@example.com"},
					},
				},
			},
			wantSubject: "lowercase header",
			wantFrom:    "shouty@example.com",
			wantDate:    DefaultDate,
		},
		{
			name:        "missing headers fall back to placeholders",
			msg:         &gmail.Message{Id: "msg-3", Payload: &gmail.MessagePart{}},
			wantSubject: DefaultSubject,
			wantFrom:    DefaultSender,
			wantDate:    DefaultDate,
		},
		{
			name:        "nil payload",
			msg:         &gmail.Message{Id: "msg-4"},
			wantSubject: DefaultSubject,
			wantFrom:    DefaultSender,
			wantDate:    DefaultDate,
		},
		{
			name: "body normalized",
			msg: &gmail.Message{
				Id: "msg-5",
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Body: &gmail.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte("A&amp;B\n\n  C")),
					},
				},
			},
			wantSubject: DefaultSubject,
			wantFrom:    DefaultSender,
			wantDate:    DefaultDate,
			wantBody:    "A&B C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messageFromAPI(tt.msg)
			assert.Equal(t, tt.msg.Id, got.ID)
			assert.Equal(t, tt.wantSubject, got.Subject)
			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantDate, got.Date)
			assert.Equal(t, tt.wantBody, got.Body)
			assert.Empty(t, got.Category)
		})
	}
}

func TestWrapAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "401 maps to auth expired",
			err:  &googleapi.Error{Code: 401, Message: "invalid credentials"},
			want: ErrAuthExpired,
		},
		{
			name: "500 maps to transport",
			err:  &googleapi.Error{Code: 500, Message: "backend error"},
			want: ErrTransport,
		},
		{
			name: "plain network error maps to transport",
			err:  errors.New("connection reset"),
			want: ErrTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := wrapAPIError("list messages", tt.err)
			assert.ErrorIs(t, wrapped, tt.want)
		})
	}
}
