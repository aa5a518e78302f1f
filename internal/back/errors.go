package back

import (
	"errors"
	"fmt"
)

// Sentinel errors for ledger lookups and corrections. Callers are expected
// to test them with errors.Is and turn them into user-facing messages.
var (
	// ErrMatchNotFound is returned when a match id does not exist in the
	// guild the caller asked about.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNoSnapshot is returned when correcting a match that was recorded
	// before pre-match rating snapshots existed (or whose snapshot was lost).
	ErrNoSnapshot = errors.New("match has no rating snapshot")

	// ErrNoOpCorrection is returned when the "corrected" winner is the team
	// already recorded as the winner.
	ErrNoOpCorrection = errors.New("declared winner is already the recorded winner")
)

// ErrInvalidInput reports a malformed argument along with the field and
// value that triggered it.
type ErrInvalidInput struct {
	Field string
	Value interface{}
	Hint  string
}

func (e ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Hint)
}

func (e ErrInvalidInput) Is(v error) bool {
	_, ok := v.(ErrInvalidInput)
	return ok
}

// ErrIncompleteRoster is returned when fewer than the required ten players
// could be resolved to a registered player with a rating.
type ErrIncompleteRoster struct {
	Missing []string // player identifiers that did not resolve
}

func (e ErrIncompleteRoster) Error() string {
	return fmt.Sprintf("incomplete roster, %d unresolved player(s)", len(e.Missing))
}

func (e ErrIncompleteRoster) Is(v error) bool {
	_, ok := v.(ErrIncompleteRoster)
	return ok
}

// ErrNonFinite is returned by the rating engine when fed NaN or ±Inf.
type ErrNonFinite struct {
	Field string
	Value float64
}

func (e ErrNonFinite) Error() string {
	return fmt.Sprintf("non-finite %s: %v", e.Field, e.Value)
}

func (e ErrNonFinite) Is(v error) bool {
	_, ok := v.(ErrNonFinite)
	return ok
}
