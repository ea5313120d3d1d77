package ids

import "github.com/google/uuid"

// New returns a random identifier for stored entities.
func New() string {
	return uuid.NewString()
}
