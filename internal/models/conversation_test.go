package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty text falls back to image label", "", "New Image Chat"},
		{"short text kept verbatim", "Hello", "Hello"},
		{"exactly thirty characters kept", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"long text truncated with ellipsis", "Hello world, this is a long test message", "Hello world, this is a long te..."},
		{"multi-byte text under limit kept", strings.Repeat("é", 25), strings.Repeat("é", 25)},
		{"multi-byte text truncated on runes", strings.Repeat("😀", 31), strings.Repeat("😀", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveTitle(tt.text)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestChatRequestHasText(t *testing.T) {
	assert.False(t, (&ChatRequest{}).HasText())
	assert.False(t, (&ChatRequest{Message: "   "}).HasText())
	assert.True(t, (&ChatRequest{Message: "hi"}).HasText())
}
