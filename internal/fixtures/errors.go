package fixtures

import "errors"

var (
	// ErrInvalidConfig is returned for generation settings out of range.
	ErrInvalidConfig = errors.New("invalid fixture config")
	// ErrVerification is returned when a written fixture does not read back
	// with the generated matches.
	ErrVerification = errors.New("fixture verification failed")
)
