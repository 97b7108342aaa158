package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateChannelID()
		assert.True(t, strings.HasPrefix(id, "chn_"))
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

func TestGenerateIDPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(GenerateUserID(), "usr_"))
	assert.True(t, strings.HasPrefix(GenerateMessageID(), "msg_"))
	assert.True(t, strings.HasPrefix(GenerateID("tok"), "tok_"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  hello  "))
	assert.Equal(t, "line1\nline2", SanitizeText("line1\nline2"))
	assert.Equal(t, "ab", SanitizeText("a\x00b"))
	assert.Equal(t, "", SanitizeText("   \x01\x02   "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.COM "))
}
