package id

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// ULID produces lexicographically sortable session identifiers.
type ULID struct{}

func (ULID) New() string {
	return strings.ToLower(ulid.Make().String())
}
