// Package feed defines how match results enter the standings store.
package feed

import (
	"context"

	"github.com/okian/tiewatch/internal/domain/model"
)

// Sink receives the match records produced by a Source.
// *standings.Store satisfies it.
type Sink interface {
	IngestRecord(ctx context.Context, rec model.MatchRecord) error
}

// Source produces every match record of an event into a sink.
type Source interface {
	// Fetch pushes all records into sink and returns once the source is
	// exhausted. A record rejected by the sink aborts the fetch.
	Fetch(ctx context.Context, sink Sink) error
	// Name identifies the source in logs.
	Name() string
}
