package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
)

// AvatarColors are the background colors used for initials avatars.
var AvatarColors = []string{
	"FF6B6B", "4ECDC4", "45B7D1", "96CEB4", "FFEAA7",
	"DDA0DD", "98D8C8", "F7DC6F", "BB8FCE", "85C1E9",
}

// GenerateAvatarWithInitials builds a DiceBear initials-avatar URL for a
// contact or user without an uploaded photo.
func GenerateAvatarWithInitials(initials string) string {
	colorIndex, _ := rand.Int(rand.Reader, big.NewInt(int64(len(AvatarColors))))
	color := AvatarColors[colorIndex.Int64()]

	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%s&backgroundColor=%s",
		url.QueryEscape(initials), color)
}

// GetInitialsFromName extracts up to two initials from a display name.
func GetInitialsFromName(name string) string {
	if name == "" {
		return "?"
	}

	runes := []rune(name)
	initials := string(runes[0])

	for i, char := range runes {
		if char == ' ' && i+1 < len(runes) && runes[i+1] != ' ' {
			initials += string(runes[i+1])
			break
		}
	}

	return initials
}
