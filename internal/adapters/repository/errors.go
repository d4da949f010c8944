package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound        = errors.New("group analysis not found")
	ErrInvalidAnalysis = errors.New("analysis has no group id")
)
