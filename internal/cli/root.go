// Package cli builds the tiewatch command tree.
package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/okian/tiewatch/internal/config"
	"github.com/okian/tiewatch/pkg/logger"
)

// Version is reported by --version.
var Version = "v0.1.0"

// environment is shared by every command once the root has loaded config.
type environment struct {
	cfg *config.Config
}

// Root returns the tiewatch root command.
func Root() *cobra.Command {
	env := &environment{}
	root := &cobra.Command{
		Use:   "tiewatch",
		Short: "Find three-way ties in round-robin groups",
		Long: heredoc.Doc(`tiewatch reads the match results of a round-robin group
			stage, enumerates every way the remaining matches can end and
			reports, per group, whether a three-way tie on wins is
			GUARANTEED, POSSIBLE or IMPOSSIBLE.

			Settings are read from defaults, then the YAML file named by
			TIEWATCH_CONFIG (or tiewatch/config.yaml in the XDG config
			directories), then TIEWATCH_* environment variables, then flags.`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.setup(cmd)
		},
	}

	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "", "Log format: text or json")

	root.Version = Version
	root.SetVersionTemplate("tiewatch {{.Version}}\n")

	root.AddCommand(Analyze(env))
	root.AddCommand(Serve(env))
	root.AddCommand(Fixture(env))

	return root
}

// setup loads the configuration, applies the global flags and initialises
// logging on the command's error stream.
func (e *environment) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}

	if err := logger.InitWith(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	e.cfg = cfg
	return nil
}
