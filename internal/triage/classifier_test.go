package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxtriage/internal/gmail"
)

// fakeCompletion records calls and plays back canned replies.
type fakeCompletion struct {
	replies    []string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompletion) Complete(_ context.Context, system, user string, _ int64) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{name: "urgent", input: "Urgent", want: CategoryUrgent},
		{name: "important", input: "Important", want: CategoryImportant},
		{name: "low priority", input: "Low Priority", want: CategoryLowPriority},
		{name: "surrounding whitespace", input: "  Urgent\n", want: CategoryUrgent},
		{name: "empty string", input: "", want: CategoryLowPriority},
		{name: "unknown literal", input: "Critical", want: CategoryLowPriority},
		{name: "partial match", input: "This email is Urgent", want: CategoryLowPriority},
		{name: "wrong case", input: "urgent", want: CategoryLowPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategory(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  Category
	}{
		{name: "urgent reply", reply: "Urgent", want: CategoryUrgent},
		{name: "important reply", reply: "Important", want: CategoryImportant},
		{name: "unrecognized reply", reply: "can't tell", want: CategoryLowPriority},
		{name: "empty reply", reply: "", want: CategoryLowPriority},
		{name: "transport error", err: errors.New("connection refused"), want: CategoryLowPriority},
	}

	msg := &gmail.Message{ID: "msg-1", Subject: "Server down", Body: "production is on fire"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompletion{replies: []string{tt.reply}, err: tt.err}
			c := NewClassifier(fake, nil)

			got := c.Classify(context.Background(), msg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, fake.calls)
		})
	}
}

func TestClassifyPromptContent(t *testing.T) {
	fake := &fakeCompletion{replies: []string{"Urgent"}}
	c := NewClassifier(fake, nil)

	longBody := strings.Repeat("x", classifyContentChars*2)
	msg := &gmail.Message{ID: "msg-1", Subject: "Big mail", Body: longBody}
	c.Classify(context.Background(), msg)

	assert.Contains(t, fake.lastUser, "Big mail")
	// Body content is capped at classifyContentChars plus the marker.
	assert.LessOrEqual(t, len(fake.lastUser), len("Big mail ")+classifyContentChars+len(gmail.TruncationMarker))
}

func TestClassifyBatch(t *testing.T) {
	msgs := []*gmail.Message{
		{ID: "a", Subject: "one"},
		{ID: "b", Subject: "two"},
		{ID: "c", Subject: "three"},
	}

	tests := []struct {
		name  string
		reply string
		err   error
		want  []Category
	}{
		{
			name:  "well-formed reply",
			reply: "Urgent, Low Priority, Important",
			want:  []Category{CategoryUrgent, CategoryLowPriority, CategoryImportant},
		},
		{
			name:  "short reply padded",
			reply: "Urgent",
			want:  []Category{CategoryUrgent, CategoryLowPriority, CategoryLowPriority},
		},
		{
			name:  "long reply truncated",
			reply: "Urgent, Important, Low Priority, Urgent, Urgent",
			want:  []Category{CategoryUrgent, CategoryImportant, CategoryLowPriority},
		},
		{
			name:  "garbage entries replaced",
			reply: "Urgent, banana, Important",
			want:  []Category{CategoryUrgent, CategoryLowPriority, CategoryImportant},
		},
		{
			name: "transport error defaults all",
			err:  errors.New("boom"),
			want: []Category{CategoryLowPriority, CategoryLowPriority, CategoryLowPriority},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompletion{replies: []string{tt.reply}, err: tt.err}
			c := NewClassifier(fake, nil)

			got := c.ClassifyBatch(context.Background(), msgs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyBatchEmptyInput(t *testing.T) {
	fake := &fakeCompletion{}
	c := NewClassifier(fake, nil)

	got := c.ClassifyBatch(context.Background(), nil)
	assert.Empty(t, got)
	assert.Zero(t, fake.calls)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
