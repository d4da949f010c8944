package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// Analyze returns the analyze command.
func Analyze(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the three-way tie report once",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`analyze fetches every match of the group phase, classifies
			each group and prints the report to stdout, groups in natural
			order, each preceded by a blank line.

			A group with a possible or guaranteed tie lists every
			reachable final score line; an impossible group prints its
			label only. Malformed input or a feed failure aborts the
			whole report with a non-zero exit status.`),
		Example: heredoc.Doc(`
			$ tiewatch analyze --event tournament/foo/event/bar
			$ tiewatch analyze --fixture groups.yaml`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyFeedFlags(cmd, env.cfg); err != nil {
				return err
			}
			report, err := newService(env.cfg).Run(cmd.Context(), newSource(env.cfg))
			if err != nil {
				return err
			}
			_, err = report.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	addFeedFlags(cmd)
	return cmd
}
