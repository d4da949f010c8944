package model

import "errors"

// Sentinel kinds for domain errors.
var (
	// ErrMalformedInput marks a contract violation by the upstream feed, such
	// as a pair of identical players or a winner outside its pair. It aborts
	// the whole run.
	ErrMalformedInput = errors.New("malformed match input")
)
