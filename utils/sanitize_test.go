package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "Hello World", "Hello World"},
		{"bold", "<b>Bold</b> move", "Bold move"},
		{"script removed", "<script>alert(1)</script>Safe", "Safe"},
		{"ampersand survives", "Tom & Jerry", "Tom & Jerry"},
		{"quotes survive", `She said "hi"`, `She said "hi"`},
		{"markup only", "<p></p>", ""},
		{"trims", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UniqueStrings([]string{"a", "b", "a", "", "c", "b"}))
	assert.Equal(t, []string{}, UniqueStrings(nil))
}
