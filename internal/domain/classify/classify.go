// Package classify decides whether a three-way tie is guaranteed, possible or
// impossible across a group's branches, and renders the result.
package classify

import "github.com/okian/tiewatch/internal/domain/model"

// tieSize is the exact number of players that must share a win count.
const tieSize = 3

// HasThreeWayTie reports whether some win count in [0, playerCount-1] is held
// by exactly three players. Four or more players on the same count do not
// form a three-way tie.
func HasThreeWayTie(v model.ScoreVector, playerCount int) bool {
	if playerCount < tieSize {
		return false
	}
	counts := make([]int, playerCount)
	for _, wins := range v {
		if wins >= 0 && wins < playerCount {
			counts[wins]++
		}
	}
	for _, n := range counts {
		if n == tieSize {
			return true
		}
	}
	return false
}

// Classify inspects every branch. It stops early only after it has seen both
// a branch with a tie and one without, since the answer is POSSIBLE from then
// on. No branches classifies as IMPOSSIBLE.
func Classify(b model.Branches) model.Classification {
	playerCount := len(b.Players)
	var sawTie, sawNoTie bool
	for _, v := range b.Vectors {
		if HasThreeWayTie(v, playerCount) {
			sawTie = true
		} else {
			sawNoTie = true
		}
		if sawTie && sawNoTie {
			return model.Possible
		}
	}
	if sawTie {
		return model.Guaranteed
	}
	return model.Impossible
}

// Analyze classifies a group from its record and branches.
func Analyze(rec model.GroupRecord, b model.Branches) model.Analysis {
	return model.Analysis{
		Group:          rec.ID(),
		Classification: Classify(b),
		Branches:       b,
		Pending:        rec.PendingCount(),
		Decided:        rec.DecidedCount(),
	}
}
