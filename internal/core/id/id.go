// Package id provides the identifiers of detail lines (lots and consumptions).
// UUIDv7 is time-ordered, so ids also give a stable creation order.
package id

import (
	"bytes"

	"github.com/google/uuid"
)

// ID is the identifier type of detail lines.
type ID = uuid.UUID

// New generates a UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Compare orders ids bytewise, which for UUIDv7 is creation order.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}
