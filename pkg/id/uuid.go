package id

import (
	"strings"

	"github.com/google/uuid"
)

// GetUUID returns a random v4 uuid, used for request ids.
func GetUUID() string {
	return uuid.NewString()
}

func GetUUIDWithoutDashes() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
