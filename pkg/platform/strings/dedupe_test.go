package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates and blanks", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
		assert.Equal(t, []string{"foo", "bar"}, got)
	})

	t.Run("preserves order", func(t *testing.T) {
		got := DedupeAndTrim([]string{"c", "a", "b", "a"})
		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, DedupeAndTrim(nil))
	})
}

func TestDedupeAndTrimLower(t *testing.T) {
	t.Run("case-insensitive dedupe", func(t *testing.T) {
		got := DedupeAndTrimLower([]string{" GRC@corp.example ", "grc@corp.example", "HR@corp.example"})
		assert.Equal(t, []string{"grc@corp.example", "hr@corp.example"}, got)
	})
}
