package model

// Outcome is the state of one match: decided with a winner, or pending.
// The loser is never stored; it is the other member of the pair.
type Outcome struct {
	winner  PlayerID
	decided bool
}

// Pending is the outcome of a match that has not been played yet.
var Pending = Outcome{}

// Decided returns the outcome of a match won by winner.
func Decided(winner PlayerID) Outcome {
	return Outcome{winner: winner, decided: true}
}

// IsPending reports whether the match is still undetermined.
func (o Outcome) IsPending() bool { return !o.decided }

// Winner returns the winner and true for a decided outcome.
func (o Outcome) Winner() (PlayerID, bool) { return o.winner, o.decided }

func (o Outcome) String() string {
	if !o.decided {
		return "pending"
	}
	return "won by " + string(o.winner)
}

// Match is one pairing of a group together with its outcome.
type Match struct {
	Pair    Pair
	Outcome Outcome
}

// ResolvePlacements turns two relative placements into a canonical pair and
// outcome. Equal placements mean the match is not decided yet; otherwise the
// lower placement wins. It panics when a == b, like NewPair.
func ResolvePlacements(a PlayerID, placementA int, b PlayerID, placementB int) (Pair, Outcome) {
	pair := NewPair(a, b)
	switch {
	case placementA < placementB:
		return pair, Decided(a)
	case placementA > placementB:
		return pair, Decided(b)
	default:
		return pair, Pending
	}
}

// MatchRecord is one match as reported by a results feed, before placement
// resolution.
type MatchRecord struct {
	Group      GroupID
	PlayerA    PlayerID
	NameA      string
	PlacementA int
	PlayerB    PlayerID
	NameB      string
	PlacementB int
}

// Validate reports ErrMalformedInput for records that reference the same
// player twice.
func (r MatchRecord) Validate() error {
	if r.PlayerA == "" || r.PlayerB == "" {
		return ErrMalformedInput
	}
	if r.PlayerA == r.PlayerB {
		return ErrMalformedInput
	}
	return nil
}

// Resolve applies ResolvePlacements to the record.
func (r MatchRecord) Resolve() (Pair, Outcome) {
	return ResolvePlacements(r.PlayerA, r.PlacementA, r.PlayerB, r.PlacementB)
}
