package feed

import (
	"errors"
)

// ErrUpstream is the category of every failure caused by a results feed.
var ErrUpstream = errors.New("upstream feed failure")
