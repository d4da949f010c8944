// Package model contains domain models passed between layers.
package model

import "fmt"

// PlayerID identifies a player. Feeds normalise numeric and textual wire ids
// to this single string form before they reach the domain.
type PlayerID string

// Pair is an unordered pair of two distinct players. The members are kept in
// ascending order so (A,B) and (B,A) are the same map key.
type Pair struct {
	lo PlayerID
	hi PlayerID
}

// NewPair builds the canonical pair for a and b.
// It panics when a == b: a player cannot play themselves.
func NewPair(a, b PlayerID) Pair {
	switch {
	case a < b:
		return Pair{lo: a, hi: b}
	case a > b:
		return Pair{lo: b, hi: a}
	default:
		panic(fmt.Sprintf("model: pair of identical players %q", a))
	}
}

// Players returns both members, lower id first.
func (p Pair) Players() (PlayerID, PlayerID) { return p.lo, p.hi }

// First returns the lower member.
func (p Pair) First() PlayerID { return p.lo }

// Second returns the higher member.
func (p Pair) Second() PlayerID { return p.hi }

// Contains reports whether id is a member of the pair.
func (p Pair) Contains(id PlayerID) bool { return id == p.lo || id == p.hi }

// Other returns the member that is not id. The result is only meaningful
// when Contains(id) holds.
func (p Pair) Other(id PlayerID) PlayerID {
	if id == p.lo {
		return p.hi
	}
	return p.lo
}

// Less orders pairs by lower member, then higher member.
func (p Pair) Less(q Pair) bool {
	if p.lo != q.lo {
		return p.lo < q.lo
	}
	return p.hi < q.hi
}

func (p Pair) String() string { return string(p.lo) + " vs " + string(p.hi) }
