package startgg

import (
	"fmt"

	"github.com/okian/tiewatch/internal/adapters/feed"
)

// Failure kinds of the start.gg feed. Each one is also a feed.ErrUpstream.
var (
	ErrGraphQL        = fmt.Errorf("%w: graphql errors", feed.ErrUpstream)
	ErrNoData         = fmt.Errorf("%w: response carried neither data nor errors", feed.ErrUpstream)
	ErrResponseFormat = fmt.Errorf("%w: unexpected response format", feed.ErrUpstream)
	ErrStatus         = fmt.Errorf("%w: unexpected http status", feed.ErrUpstream)
)
