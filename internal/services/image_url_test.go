package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageURL(t *testing.T) {
	hosts := []string{"cdn.riddle.gg"}

	assert.NoError(t, ValidateImageURL("", hosts))
	assert.NoError(t, ValidateImageURL("https://cdn.riddle.gg/a/b.png", hosts))
	assert.NoError(t, ValidateImageURL("https://eu.cdn.riddle.gg/a.WEBP", hosts))
	assert.NoError(t, ValidateImageURL("https://anything.example/a.jpg", nil))

	for _, bad := range []string{
		"http://cdn.riddle.gg/a.png",
		"/relative/a.png",
		"https://cdn.riddle.gg/a.svg",
		"https://cdn.riddle.gg/a",
		"https://evil.example/a.png",
		"https://notcdn.riddle.gg.evil.example/a.png",
	} {
		assert.ErrorIs(t, ValidateImageURL(bad, hosts), ErrInvalidInput, bad)
	}
}
