// Package gameid mints the identifiers recorded against each hand, so a
// client and the server's hand-history log can refer to the same hand
// without depending on HandNumber, which resets per table restart and
// collides across tables.
package gameid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generate returns a new hand identifier: a UUIDv7's canonical string
// form, so IDs sort lexically by creation time the same way they sort
// chronologically.
func Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Only fails if the system's entropy source is broken, which
		// nothing downstream can recover from.
		panic("gameid: " + err.Error())
	}
	return id.String()
}

// Validate reports whether id is a syntactically valid hand identifier.
func Validate(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("gameid: invalid hand ID %q: %w", id, err)
	}
	if parsed.Version() != 7 {
		return fmt.Errorf("gameid: hand ID %q is not a UUIDv7", id)
	}
	return nil
}
