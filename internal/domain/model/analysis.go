package model

import "slices"

// ScoreVector holds one projected win count per player, aligned with the
// roster of the Branches it belongs to.
type ScoreVector []int

// Sum returns the total number of wins in the vector.
func (v ScoreVector) Sum() int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}

// Branches is every reachable final score vector of a group, in enumeration
// order, together with the roster the vectors are aligned to.
type Branches struct {
	Players []PlayerID
	Vectors []ScoreVector
}

// Len returns the number of branches.
func (b Branches) Len() int { return len(b.Vectors) }

// Wins returns the projected wins of player in branch i, or -1 when the
// player is not in the roster.
func (b Branches) Wins(i int, player PlayerID) int {
	j, ok := slices.BinarySearch(b.Players, player)
	if !ok {
		return -1
	}
	return b.Vectors[i][j]
}

// Classification tells whether a three-way tie is reachable in a group.
type Classification int

const (
	// Impossible means no branch has a three-way tie.
	Impossible Classification = iota
	// Possible means some but not all branches have a three-way tie.
	Possible
	// Guaranteed means every branch has a three-way tie.
	Guaranteed
)

func (c Classification) String() string {
	switch c {
	case Impossible:
		return "IMPOSSIBLE"
	case Possible:
		return "POSSIBLE"
	case Guaranteed:
		return "GUARANTEED"
	default:
		return "UNKNOWN"
	}
}

// Analysis is the classified outcome of one group.
type Analysis struct {
	Group          GroupID
	Classification Classification
	Branches       Branches
	Pending        int
	Decided        int
}
