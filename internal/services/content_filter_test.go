package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentFilterCheck(t *testing.T) {
	f := NewContentFilter()

	tests := []struct {
		text   string
		reason string
	}{
		{"I speak without a mouth", ""},
		{"", ""},
		{"what the SHIT", "inappropriate_language"},
		{"see https://spam.example", "url_not_allowed"},
		{"mail me at riddler@example.com", "contact_info_not_allowed"},
		{"call 555-123-4567", "contact_info_not_allowed"},
		{"ring (555) 123 4567", "contact_info_not_allowed"},
		{"text +1 555 123 4567", "contact_info_not_allowed"},
		{"What is 1234567890 divided by 10?", ""},
		{"Add 3141592653 and 2718281828", ""},
		{"soooooooo easy", "spam_detected"},
		{"why??????", "spam_detected"},
	}
	for _, tt := range tests {
		reason, ok := f.Check(tt.text)
		assert.Equal(t, tt.reason == "", ok, tt.text)
		assert.Equal(t, tt.reason, reason, tt.text)
	}
}

func TestContentFilterScreen(t *testing.T) {
	f := NewContentFilter()

	assert.NoError(t, f.Screen(map[string]string{"name": "Night Owls", "description": "We solve at midnight"}))

	err := f.Screen(map[string]string{"name": "Night Owls", "description": "join www.spam.example.com"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "description links are not allowed", err.Error())

	var nilFilter *ContentFilter
	assert.NoError(t, nilFilter.Screen(map[string]string{"name": "shit"}))
}
