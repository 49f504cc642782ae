package clubdb

import "errors"

var (
	// ErrNotFound is returned when a club is not found.
	ErrNotFound = errors.New("club not found")

	// ErrDuplicateName is returned when a club name is already taken.
	ErrDuplicateName = errors.New("club name already exists")
)
