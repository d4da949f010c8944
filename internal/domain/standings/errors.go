package standings

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrUnknownGroup   = errors.New("group not found")
	ErrGroupFinalized = errors.New("group already finalized")
)
