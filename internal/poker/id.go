package poker

import "github.com/google/uuid"

// NewID returns an opaque random identifier for sessions, participants and
// rounds.
func NewID() string {
	return uuid.NewString()
}
