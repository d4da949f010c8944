// Package standings accumulates match outcomes per group while a results feed
// is being paginated, and finalizes them into immutable group records.
package standings

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/tiewatch/internal/domain/model"
	"github.com/okian/tiewatch/pkg/logger"
	"github.com/okian/tiewatch/pkg/metrics"
)

// group is the mutable builder state of one group.
type group struct {
	matches map[model.Pair]model.Outcome
	final   *model.GroupRecord
}

// Store is the owned, mutable builder handed to the ingestion loop. It is
// safe for concurrent use, although feeds ingest sequentially.
type Store struct {
	mu     sync.RWMutex
	groups map[model.GroupID]*group
	names  map[model.PlayerID]string
	logger logger.Logger
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		groups: make(map[model.GroupID]*group),
		names:  make(map[model.PlayerID]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("standings")
	}
	return s
}

// Ingest records the outcome of pair within group. A later call for the same
// pair overwrites the earlier one, so a match repeated across feed pages is
// counted once.
//
// It panics when a decided outcome names a winner outside the pair.
func (s *Store) Ingest(ctx context.Context, id model.GroupID, pair model.Pair, outcome model.Outcome) error {
	if winner, ok := outcome.Winner(); ok && !pair.Contains(winner) {
		panic("standings: winner " + string(winner) + " is not a member of " + pair.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		g = &group{matches: make(map[model.Pair]model.Outcome)}
		s.groups[id] = g
	}
	if g.final != nil {
		return ErrGroupFinalized
	}
	if prev, seen := g.matches[pair]; seen {
		metrics.RecordPairOverwrite()
		s.logger.Debug(ctx, "pair ingested again, keeping latest outcome",
			logger.String("group", string(id)),
			logger.String("pair", pair.String()),
			logger.String("previous", prev.String()),
			logger.String("latest", outcome.String()),
		)
	}
	g.matches[pair] = outcome
	metrics.RecordRecordIngested()
	return nil
}

// IngestRecord validates a feed record, remembers both display names and
// ingests the resolved outcome.
func (s *Store) IngestRecord(ctx context.Context, rec model.MatchRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.SetName(rec.PlayerA, rec.NameA)
	s.SetName(rec.PlayerB, rec.NameB)
	pair, outcome := rec.Resolve()
	return s.Ingest(ctx, rec.Group, pair, outcome)
}

// SetName remembers the display name of a player. Empty names are ignored.
func (s *Store) SetName(id model.PlayerID, name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()
}

// Name returns the display name of a player, falling back to the id.
func (s *Store) Name(id model.PlayerID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.names[id]; ok {
		return name
	}
	return string(id)
}

// Names returns a copy of all known display names.
func (s *Store) Names() map[model.PlayerID]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.PlayerID]string, len(s.names))
	for id, name := range s.names {
		out[id] = name
	}
	return out
}

// Finalize freezes a group and returns its record. Calling it again returns
// the same record.
func (s *Store) Finalize(_ context.Context, id model.GroupID) (model.GroupRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return model.GroupRecord{}, ErrUnknownGroup
	}
	return g.finalize(id), nil
}

// FinalizeAll freezes every group and returns the records in natural group
// order.
func (s *Store) FinalizeAll(_ context.Context) []model.GroupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]model.GroupRecord, 0, len(s.groups))
	for _, id := range s.sortedIDs() {
		records = append(records, s.groups[id].finalize(id))
	}
	return records
}

// Groups returns every group id seen so far in natural order.
func (s *Store) Groups() []model.GroupID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedIDs()
}

// Len returns the number of groups.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups)
}

// sortedIDs must be called with s.mu held.
func (s *Store) sortedIDs() []model.GroupID {
	ids := make([]model.GroupID, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, model.CompareGroupIDs)
	return ids
}

func (g *group) finalize(id model.GroupID) model.GroupRecord {
	if g.final == nil {
		rec := model.NewGroupRecord(id, g.matches)
		g.final = &rec
		g.matches = nil
	}
	return *g.final
}
