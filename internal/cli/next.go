package cli

import (
	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/actions"
	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/version"
)

// newNextCmd creates the next command
func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "next [major|minor|patch]",
		Short:     "Print the version that follows the package version",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"major", "minor", "patch"},
		RunE: func(cmd *cobra.Command, args []string) error {
			part := version.Minor
			if len(args) > 0 {
				var err error
				if part, err = version.ParsePart(args[0]); err != nil {
					return err
				}
			}
			return run(cmd, func(rt *runtime.Context) error {
				next, err := actions.NextVersionAction(cmd.Context(), rt, part)
				if err != nil {
					return err
				}
				rt.Splog.Page(next + "\n")
				return nil
			})
		},
	}
}
