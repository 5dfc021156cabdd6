package match

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned for malformed or out-of-range input.
	// State is unchanged and the Turn or Bid stays open for a retry.
	ErrInvalidAction = errors.New("invalid action")

	// ErrStaleAction is returned for actions against a Done Turn or a
	// Resolved Bid. It is a no-op.
	ErrStaleAction = errors.New("stale action")

	ErrBadPlayerCount = errors.New("match needs 3 to 5 players")
	ErrMatchFull      = errors.New("match is full")
	ErrNotStarted     = errors.New("match not started")
	ErrAlreadyStarted = errors.New("match already started")
	ErrMatchComplete  = errors.New("match complete")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}
