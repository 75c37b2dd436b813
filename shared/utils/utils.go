package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new random (v4) UUID string. Used for transaction,
// session and request ids.
func GenerateID() string {
	return uuid.NewString()
}

// NormalizeUUID parses id as a UUID and returns its canonical lowercase
// form. Ids are compared as text by SQLite, so callers normalise before
// querying.
func NormalizeUUID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
