package uuid

import (
	"bytes"

	"github.com/google/uuid"
)

type UUID = uuid.UUID

// Nil is the zero UUID
var Nil = uuid.Nil

// New returns a new time ordered (version 7) UUID.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// Parse parses a UUID string. Braced and urn: forms are accepted.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// MustParse parses a UUID string and panics if the string is not a valid UUID
func MustParse(s string) UUID {
	return uuid.MustParse(s)
}

// Compare orders UUIDs by their bytes. For version 7 UUIDs this is creation
// order.
//
//	-1 if a < b
//	 0 if a == b
//	+1 if a > b
func Compare(a, b UUID) int {
	return bytes.Compare(a[:], b[:])
}
