package cli

import (
	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/runtime"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration.

Shows the result of merging the defaults, the git-flow settings of the
repository, .npmflow.yml and NPMFLOW_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				out, err := rt.Config.YAML()
				if err != nil {
					return err
				}
				rt.Splog.Page(string(out))
				return nil
			})
		},
	}
}
