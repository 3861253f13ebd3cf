package utils

import "github.com/oklog/ulid/v2"

// NewULID returns a time-sortable unique identifier.
func NewULID() string {
	return ulid.Make().String()
}
