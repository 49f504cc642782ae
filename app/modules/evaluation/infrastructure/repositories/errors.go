package evaluationdb

import "errors"

// ErrNotFound is returned when no lock record exists for a criterion.
var ErrNotFound = errors.New("evaluated criterion not found")
