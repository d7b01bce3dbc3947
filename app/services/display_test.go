package services

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayColor(t *testing.T) {
	hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)

	c1 := DisplayColor("aB3dE9xZ")
	assert.Regexp(t, hex, c1)
	assert.Equal(t, c1, DisplayColor("aB3dE9xZ"))
	assert.NotEqual(t, c1, DisplayColor("aB3dE9xY"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		limit     int
		want      string
		truncated bool
	}{
		{"short", "hello", 10, "hello", false},
		{"exact", "hello", 5, "hello", false},
		{"long", "hello world", 5, "hello", true},
		{"multibyte", "жжжжж", 3, "жжж", true},
		{"inside entity", "ab&amp;cd", 4, "ab", true},
		{"after entity", "ab&amp;cd", 8, "ab&amp;c", true},
		{"no limit", "hello", 0, "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.truncated, truncated)
		})
	}

	t.Run("listing preview length", func(t *testing.T) {
		got, truncated := Truncate(strings.Repeat("x", 3000), DefaultPreviewChars)
		assert.True(t, truncated)
		assert.Len(t, got, DefaultPreviewChars)
	})
}
