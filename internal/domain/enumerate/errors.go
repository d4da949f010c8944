package enumerate

import "errors"

// Sentinel kinds for enumeration errors.
var (
	ErrTooManyPending = errors.New("too many pending matches to enumerate")
)
