package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateChannelID generates a unique channel ID
func GenerateChannelID() string {
	return GenerateID("chn")
}

// GenerateUserID generates a unique user ID
func GenerateUserID() string {
	return GenerateID("usr")
}

// GenerateMessageID generates a unique chat message ID
func GenerateMessageID() string {
	return GenerateID("msg")
}

// GenerateID generates a prefixed UUID-based ID
func GenerateID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + id
}
