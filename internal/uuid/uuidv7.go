// Package uuid generates the time-ordered identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a new UUIDv7 string. UUIDv7 embeds a millisecond timestamp in
// the high bits, so freshly inserted rows cluster together in btree indexes.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
