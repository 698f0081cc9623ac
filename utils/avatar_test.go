package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInitialsFromName(t *testing.T) {
	assert.Equal(t, "JS", GetInitialsFromName("Jane Smith"))
	assert.Equal(t, "A", GetInitialsFromName("Acme"))
	assert.Equal(t, "AC", GetInitialsFromName("Acme Corp Holdings"))
	assert.Equal(t, "?", GetInitialsFromName(""))
}

func TestGenerateAvatarWithInitials(t *testing.T) {
	url := GenerateAvatarWithInitials("JS")
	assert.True(t, strings.HasPrefix(url, "https://api.dicebear.com/7.x/initials/svg?seed=JS"))
	assert.Contains(t, url, "backgroundColor=")
}
