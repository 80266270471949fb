package db

import "errors"

// ErrNotFound is returned when a requested document does not exist. Callers
// test with errors.Is; repositories wrap it with the entity and ID.
var ErrNotFound = errors.New("not found")
