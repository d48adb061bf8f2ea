package sync

import (
	"errors"
)

// ErrInvalidInput marks request validation failures. These are never retried
// and callers should drop the originating message rather than redeliver it.
var ErrInvalidInput = errors.New("invalid input")
