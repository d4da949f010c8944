package model

import (
	"cmp"
	"slices"
	"strings"
)

// GroupID identifies one round-robin group, e.g. a bracket display
// identifier such as "1" or "A3".
type GroupID string

// CompareGroupIDs orders group ids naturally: runs of digits compare as
// numbers, everything else byte-wise, so "2" sorts before "10".
func CompareGroupIDs(a, b GroupID) int {
	x, y := string(a), string(b)
	for x != "" && y != "" {
		cx, restX := nextChunk(x)
		cy, restY := nextChunk(y)
		if c := compareChunks(cx, cy); c != 0 {
			return c
		}
		x, y = restX, restY
	}
	switch {
	case x == "" && y == "":
		return 0
	case x == "":
		return -1
	default:
		return 1
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// nextChunk splits off the leading run of digits or non-digits.
func nextChunk(s string) (string, string) {
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

func compareChunks(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(ta), len(tb)); c != 0 {
			return c
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// GroupRecord is the finalized, read-only set of matches of one group.
type GroupRecord struct {
	id      GroupID
	matches []Match
	players []PlayerID
}

// NewGroupRecord builds a record from matches keyed by pair. Matches are
// stored in ascending pair order and the player set is derived from them.
// It panics when a decided match names a winner outside its pair.
func NewGroupRecord(id GroupID, matches map[Pair]Outcome) GroupRecord {
	rec := GroupRecord{id: id, matches: make([]Match, 0, len(matches))}
	seen := make(map[PlayerID]struct{}, 2*len(matches))
	for pair, outcome := range matches {
		if winner, ok := outcome.Winner(); ok && !pair.Contains(winner) {
			panic("model: winner " + string(winner) + " is not a member of " + pair.String())
		}
		rec.matches = append(rec.matches, Match{Pair: pair, Outcome: outcome})
		a, b := pair.Players()
		seen[a] = struct{}{}
		seen[b] = struct{}{}
	}
	slices.SortFunc(rec.matches, func(x, y Match) int {
		switch {
		case x.Pair.Less(y.Pair):
			return -1
		case y.Pair.Less(x.Pair):
			return 1
		default:
			return 0
		}
	})
	rec.players = make([]PlayerID, 0, len(seen))
	for id := range seen {
		rec.players = append(rec.players, id)
	}
	slices.Sort(rec.players)
	return rec
}

// ID returns the group id.
func (g GroupRecord) ID() GroupID { return g.id }

// Matches returns a copy of the matches in ascending pair order.
func (g GroupRecord) Matches() []Match { return slices.Clone(g.matches) }

// Players returns a copy of the player set in ascending id order.
func (g GroupRecord) Players() []PlayerID { return slices.Clone(g.players) }

// PlayerCount returns the number of distinct players in the group.
func (g GroupRecord) PlayerCount() int { return len(g.players) }

// PendingCount returns the number of undetermined matches.
func (g GroupRecord) PendingCount() int {
	n := 0
	for _, m := range g.matches {
		if m.Outcome.IsPending() {
			n++
		}
	}
	return n
}

// DecidedCount returns the number of matches with a winner.
func (g GroupRecord) DecidedCount() int { return len(g.matches) - g.PendingCount() }

// Index returns the position of id in Players, or -1.
func (g GroupRecord) Index(id PlayerID) int {
	i, ok := slices.BinarySearch(g.players, id)
	if !ok {
		return -1
	}
	return i
}
