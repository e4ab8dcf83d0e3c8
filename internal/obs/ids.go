package obs

import "github.com/google/uuid"

// NewRunID generates an identifier suitable for reactor.WithID, tying a
// run's traces, metrics and logs together.
func NewRunID() string {
	return uuid.New().String()
}
