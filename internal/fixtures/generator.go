package fixtures

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/tiewatch/internal/adapters/feed/fixture"
	"github.com/okian/tiewatch/pkg/logger"
)

// Placements written for decided and pending matches.
const (
	winnerPlacement = 1
	loserPlacement  = 2
	pendingPlace    = 0
)

func (c *Config) validate() error {
	switch {
	case c.Groups < 1:
		return fmt.Errorf("%w: groups must be positive", ErrInvalidConfig)
	case c.PlayersPerGroup < 2:
		return fmt.Errorf("%w: players per group must be at least 2", ErrInvalidConfig)
	case c.PendingRatio < 0 || c.PendingRatio > 1:
		return fmt.Errorf("%w: pending ratio must be within [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// randomSeed returns a non-zero seed from crypto/rand.
func randomSeed() uint64 {
	var b [8]byte
	_, _ = cryptorand.Read(b[:])
	if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
		return s
	}
	return 1
}

// groupSource derives an independent stream per group so the output does
// not depend on how groups are spread over workers.
func groupSource(seed uint64, index int) *rand.ChaCha8 {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:], seed)
	binary.LittleEndian.PutUint64(key[8:], uint64(index))
	return rand.NewChaCha8(key)
}

// Generate builds a fixture document. Equal seeds give equal documents.
func Generate(ctx context.Context, config *Config, stats *Stats) (*fixture.Document, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.Seed == 0 {
		config.Seed = randomSeed()
	}
	stats.Seed = config.Seed

	logger.Get().Info(ctx, "generating round-robin groups",
		logger.Int("groups", config.Groups),
		logger.Int("playersPerGroup", config.PlayersPerGroup),
		logger.Any("pendingRatio", config.PendingRatio),
		logger.Any("seed", config.Seed))

	doc := &fixture.Document{Groups: make([]fixture.Group, config.Groups)}

	g, gctx := errgroup.WithContext(ctx)
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range doc.Groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("context cancelled during group generation: %w", err)
			}
			doc.Groups[i] = generateGroup(config, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Groups = len(doc.Groups)
	for _, grp := range doc.Groups {
		stats.Players += config.PlayersPerGroup
		stats.Matches += len(grp.Matches)
		for _, m := range grp.Matches {
			if m.A.Placement == m.B.Placement {
				stats.Pending++
			}
		}
	}
	logger.Get().Info(ctx, "generated groups successfully",
		logger.Int("groups", stats.Groups),
		logger.Int("matches", stats.Matches),
		logger.Int("pending", stats.Pending))
	return doc, nil
}

// generateGroup plays every pair of one group once.
func generateGroup(config *Config, index int) fixture.Group {
	src := groupSource(config.Seed, index)
	rng := rand.New(src)

	players := make([]fixture.Slot, config.PlayersPerGroup)
	for i := range players {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			id = uuid.New()
		}
		players[i] = fixture.Slot{
			ID:   id.String(),
			Name: "Player " + strconv.Itoa(index+1) + "-" + strconv.Itoa(i+1),
		}
	}

	n := len(players)
	grp := fixture.Group{
		ID:      strconv.Itoa(index + 1),
		Matches: make([]fixture.Match, 0, n*(n-1)/2),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := players[i], players[j]
			switch {
			case rng.Float64() < config.PendingRatio:
				a.Placement, b.Placement = pendingPlace, pendingPlace
			case rng.IntN(2) == 0:
				a.Placement, b.Placement = winnerPlacement, loserPlacement
			default:
				a.Placement, b.Placement = loserPlacement, winnerPlacement
			}
			grp.Matches = append(grp.Matches, fixture.Match{A: a, B: b})
		}
	}
	return grp
}
