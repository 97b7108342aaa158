package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"alice@x.com", false},
		{"bob.smith+tag@example.co.uk", false},
		{"", true},
		{"not-an-email", true},
		{"@missing-local.com", true},
		{strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.wantErr {
			assert.Error(t, err, tt.email)
		} else {
			assert.NoError(t, err, tt.email)
		}
	}
}

func TestValidateChannelTitle(t *testing.T) {
	assert.NoError(t, ValidateChannelTitle("Algebra"))
	assert.Error(t, ValidateChannelTitle(""))
	assert.Error(t, ValidateChannelTitle("   "))
	assert.Error(t, ValidateChannelTitle(strings.Repeat("x", 101)))
}

func TestValidateChannelID(t *testing.T) {
	assert.NoError(t, ValidateChannelID("chn_a1b2-c3"))
	assert.Error(t, ValidateChannelID(""))
	assert.Error(t, ValidateChannelID("bad id with spaces"))
	assert.Error(t, ValidateChannelID(strings.Repeat("x", 101)))
}

func TestValidateDisplayName(t *testing.T) {
	assert.NoError(t, ValidateDisplayName("Alice L."))
	assert.Error(t, ValidateDisplayName(""))
	assert.Error(t, ValidateDisplayName(strings.Repeat("x", 101)))
}
