package store

import "errors"

// ErrWriteFailed is returned when the backend cannot persist a collection.
// The previous contents remain readable.
var ErrWriteFailed = errors.New("store: write failed")
