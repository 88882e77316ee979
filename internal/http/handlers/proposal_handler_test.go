package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "admin", 128, "admin"},
		{"exact", strings.Repeat("a", 128), 128, strings.Repeat("a", 128)},
		{"ascii cut", strings.Repeat("a", 200), 128, strings.Repeat("a", 128)},
		{"rune across limit", strings.Repeat("a", 127) + "é", 128, strings.Repeat("a", 127)},
		{"four byte rune", strings.Repeat("a", 126) + "🍎", 128, strings.Repeat("a", 126)},
		{"rune at limit", strings.Repeat("a", 126) + "é" + "b", 128, strings.Repeat("a", 126) + "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.n)
		})
	}
}
