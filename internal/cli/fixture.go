package cli

import (
	"fmt"
	"runtime"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/okian/tiewatch/internal/fixtures"
)

// Fixture returns the fixture command.
func Fixture(_ *environment) *cobra.Command {
	cfg := fixtures.Config{}
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Generate a random group stage fixture file",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`fixture writes a YAML file of random round-robin groups
			in which every pair meets once and a share of the matches
			is still pending. The file can be analysed offline with
			"tiewatch analyze --fixture".

			The same --seed always produces the same file.`),
		Example: heredoc.Doc(`
			$ tiewatch fixture --groups 16 --players 4 --output groups.yaml
			$ tiewatch analyze --fixture groups.yaml`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := fixtures.Run(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d groups, %d matches (%d pending), seed %d\n",
				stats.OutputFile, stats.Groups, stats.Matches, stats.Pending, stats.Seed)
			return err
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Groups, "groups", fixtures.DefaultGroups, "Number of groups")
	f.IntVar(&cfg.PlayersPerGroup, "players", fixtures.DefaultPlayersPerGroup, "Players per group")
	f.Float64Var(&cfg.PendingRatio, "pending-ratio", fixtures.DefaultPendingRatio, "Share of matches left pending")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Random seed; 0 picks one")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of concurrent generators")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Output file (default: groups_TIMESTAMP.yaml)")
	return cmd
}
