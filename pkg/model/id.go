package model

import (
	"strings"

	"github.com/google/uuid"
)

// NewID allocates a CDMI-style opaque object identifier: 32 lowercase hex
// characters from a random UUID.
//
// Generation is purely local (no clock coordination, no central counter),
// so allocation never blocks and identifiers are collision-resistant across
// independent writers. Identifiers are independent of any path and stay
// stable for the lifetime of the entity.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
