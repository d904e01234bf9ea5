package repl

import "errors"

var (
	// ErrOutOfBounds reports a history index outside the stored entries.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined reports that the user chose not to reopen the
	// editor after a failed round trip.
	ErrEditDeclined = errors.New("edit declined")
)
