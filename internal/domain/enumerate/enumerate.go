// Package enumerate computes every final score vector a group can reach once
// its pending matches are played.
package enumerate

import (
	"fmt"

	"github.com/okian/tiewatch/internal/domain/model"
)

// DefaultMaxPending bounds EnumerateChecked at 2^20 branches.
const DefaultMaxPending = 20

// Enumerator expands group records into branches.
type Enumerator struct {
	maxPending int
}

// New creates an Enumerator with configuration options.
func New(opts ...Option) *Enumerator {
	e := &Enumerator{maxPending: DefaultMaxPending}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnumerateChecked is Enumerate with a guard on the number of pending
// matches. It returns ErrTooManyPending instead of allocating more than
// 2^maxPending vectors.
func (e *Enumerator) EnumerateChecked(rec model.GroupRecord) (model.Branches, error) {
	if k := rec.PendingCount(); k > e.maxPending {
		return model.Branches{}, fmt.Errorf("group %s has %d pending matches (limit %d): %w",
			rec.ID(), k, e.maxPending, ErrTooManyPending)
	}
	return Enumerate(rec), nil
}

// Enumerate returns exactly 2^k vectors for k pending matches, duplicates
// included. Decided matches add one win to their winner in every vector.
// Each pending pair (A, B) doubles the set: the current vectors gain a win
// for A, and copies with a win for B instead are appended after them.
// Matches are visited in ascending pair order, so the output order is stable.
func Enumerate(rec model.GroupRecord) model.Branches {
	players := rec.Players()
	vectors := []model.ScoreVector{make(model.ScoreVector, len(players))}

	for _, m := range rec.Matches() {
		if winner, ok := m.Outcome.Winner(); ok {
			i := rec.Index(winner)
			for _, v := range vectors {
				v[i]++
			}
			continue
		}

		a, b := m.Pair.Players()
		ia, ib := rec.Index(a), rec.Index(b)
		forked := make([]model.ScoreVector, len(vectors))
		for j, v := range vectors {
			w := make(model.ScoreVector, len(v))
			copy(w, v)
			v[ia]++
			w[ib]++
			forked[j] = w
		}
		vectors = append(vectors, forked...)
	}

	return model.Branches{Players: players, Vectors: vectors}
}
