package core

import "errors"

// ErrNotFound is returned by storage lookups for an absent key.
var ErrNotFound = errors.New("core: not found")
