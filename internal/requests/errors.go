package requests

import "errors"

// ErrNotFound is returned when no record matches a lookup or update.
var ErrNotFound = errors.New("request record not found")
