// Package fixtures synthesises random round-robin groups with pending
// matches and writes them as fixture files for offline analysis runs.
package fixtures

import "time"

// Default generation settings.
const (
	DefaultGroups          = 8
	DefaultPlayersPerGroup = 4
	DefaultPendingRatio    = 0.4
)

// Config holds configuration for fixture generation.
type Config struct {
	Groups          int     // Number of groups to generate
	PlayersPerGroup int     // Players in every group
	PendingRatio    float64 // Probability that a match is still pending
	Seed            uint64  // Random seed; zero picks one at random
	Workers         int     // Number of concurrent generators
	OutputFile      string  // Output file; empty picks a timestamped name
}

// Stats holds generation statistics.
type Stats struct {
	Groups     int
	Players    int
	Matches    int
	Pending    int
	Seed       uint64
	OutputFile string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}
