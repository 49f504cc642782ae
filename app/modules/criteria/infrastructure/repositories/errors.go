package criteriadb

import "errors"

// ErrNotFound indicates no override is stored.
var ErrNotFound = errors.New("criteria override not found")
