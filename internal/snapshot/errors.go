package snapshot

import "errors"

// ErrNotFound is returned when a requested snapshot does not exist in the store.
var ErrNotFound = errors.New("not found")
