package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/inboxtriage/internal/gmail"
)

func TestSummarizeEmptyInputSkipsRemoteCall(t *testing.T) {
	fake := &fakeCompletion{}
	s := NewSummarizer(fake, nil)

	got := s.Summarize(context.Background(), nil)
	assert.Equal(t, EmptySummary, got)
	assert.Zero(t, fake.calls, "empty mailbox must not call the completion endpoint")

	got = s.Summarize(context.Background(), []*gmail.Message{})
	assert.Equal(t, EmptySummary, got)
	assert.Zero(t, fake.calls)
}

func TestSummarize(t *testing.T) {
	msgs := []*gmail.Message{
		{Subject: "Server down", From: "ops@example.com", Category: "Urgent"},
		{Subject: "Lunch?", From: "friend@example.com", Category: "Low Priority"},
	}

	tests := []struct {
		name  string
		reply string
		err   error
		want  string
	}{
		{name: "digest trimmed", reply: "  One urgent incident, one social note.\n", want: "One urgent incident, one social note."},
		{name: "failure falls back", err: errors.New("rate limited"), want: FallbackSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompletion{replies: []string{tt.reply}, err: tt.err}
			s := NewSummarizer(fake, nil)

			got := s.Summarize(context.Background(), msgs)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, fake.calls)
		})
	}
}

func TestSummarizePromptListsMessages(t *testing.T) {
	fake := &fakeCompletion{replies: []string{"digest"}}
	s := NewSummarizer(fake, nil)

	msgs := []*gmail.Message{
		{Subject: "Server down", From: "ops@example.com", Category: "Urgent"},
	}
	s.Summarize(context.Background(), msgs)

	assert.Contains(t, fake.lastUser, "Subject: Server down")
	assert.Contains(t, fake.lastUser, "From: ops@example.com")
	assert.Contains(t, fake.lastUser, "Category: Urgent")
}

func TestEvaluateRule(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    bool
		wantErr bool
	}{
		{name: "true reply", reply: "true", want: true},
		{name: "true with whitespace and case", reply: " True\n", want: true},
		{name: "false reply", reply: "false", want: false},
		{name: "garbage reply", reply: "maybe", want: false},
		{name: "transport error", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompletion{replies: []string{tt.reply}, err: tt.err}

			got, err := EvaluateRule(context.Background(), fake, "from my boss", "From: boss@example.com")
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
