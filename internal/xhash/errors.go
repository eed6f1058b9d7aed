package xhash

import "errors"

// ErrBadLength is returned when decoding a digest from bytes of the wrong length.
var ErrBadLength = errors.New("xhash: digest must be 32 bytes")
