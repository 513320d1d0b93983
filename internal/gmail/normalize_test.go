package gmail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "entities decoded and whitespace collapsed",
			input: "A&amp;B\n\n  C",
			want:  "A&B C",
		},
		{
			name:  "tabs and newlines collapse",
			input: "one\ttwo\r\nthree",
			want:  "one two three",
		},
		{
			name:  "leading and trailing space trimmed",
			input: "  padded  ",
			want:  "padded",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "plain text unchanged",
			input: "nothing to do here",
			want:  "nothing to do here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestNormalizeTextTruncationBoundary(t *testing.T) {
	// A body one character over the cap truncates to exactly the cap plus
	// the marker; one under the cap is untouched.
	over := strings.Repeat("a", MaxBodyChars+1)
	got := NormalizeText(over)
	assert.Len(t, got, MaxBodyChars+len(TruncationMarker))
	assert.True(t, strings.HasSuffix(got, TruncationMarker))

	under := strings.Repeat("a", MaxBodyChars-1)
	assert.Equal(t, under, NormalizeText(under))

	exact := strings.Repeat("a", MaxBodyChars)
	assert.Equal(t, exact, NormalizeText(exact))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "shorter than cap", input: "short", max: 10, want: "short"},
		{name: "exactly at cap", input: "12345", max: 5, want: "12345"},
		{name: "over cap", input: "123456", max: 5, want: "12345" + TruncationMarker},
		{name: "multibyte runes counted as characters", input: "héllo wörld", max: 5, want: "héllo" + TruncationMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.max))
		})
	}
}
