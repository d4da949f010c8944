package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/tiewatch/internal/adapters/feed"
	"github.com/okian/tiewatch/internal/adapters/feed/fixture"
	"github.com/okian/tiewatch/internal/adapters/feed/startgg"
	service "github.com/okian/tiewatch/internal/app"
	"github.com/okian/tiewatch/internal/config"
	"github.com/okian/tiewatch/pkg/logger"
)

// addFeedFlags registers the flags shared by commands that run an analysis.
func addFeedFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("event", "e", "", "start.gg event slug, e.g. tournament/foo/event/bar")
	f.StringP("fixture", "f", "", "Read match results from a fixture file instead of start.gg")
	f.String("phase", "", "Name of the group phase to analyse")
	f.Int("workers", 0, "Number of analysis workers")
	f.Int("max-pending", 0, "Largest number of pending matches allowed in one group")
}

// applyFeedFlags copies explicitly set flags over cfg and validates the
// result.
func applyFeedFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("event") {
		cfg.EventSlug, _ = f.GetString("event")
	}
	if f.Changed("fixture") {
		cfg.FixtureFile, _ = f.GetString("fixture")
	}
	if f.Changed("phase") {
		cfg.PhaseName, _ = f.GetString("phase")
	}
	if f.Changed("workers") {
		cfg.WorkerCount, _ = f.GetInt("workers")
	}
	if f.Changed("max-pending") {
		cfg.MaxPending, _ = f.GetInt("max-pending")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.RequireFeed()
}

// newSource picks the fixture feed when a file is configured and start.gg
// otherwise.
func newSource(cfg *config.Config) feed.Source {
	if cfg.FixtureFile != "" {
		return fixture.NewSource(cfg.FixtureFile)
	}
	return startgg.New(cfg.APIURL, cfg.APIToken, cfg.EventSlug,
		startgg.WithPhaseName(cfg.PhaseName),
		startgg.WithPerPage(cfg.PerPage),
		startgg.WithRequestsPerMinute(cfg.RequestsPerMinute),
		startgg.WithTimeout(cfg.RequestTimeout()),
		startgg.WithMaxRetries(cfg.MaxRetries),
		startgg.WithUserAgent(cfg.UserAgent),
		startgg.WithLogger(logger.Named("startgg")),
	)
}

func newService(cfg *config.Config) *service.Service {
	return service.New(
		service.WithLogger(logger.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithMaxPending(cfg.MaxPending),
	)
}
