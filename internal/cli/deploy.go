package cli

import (
	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/actions"
	"npmflow.dev/npmflow/internal/runtime"
)

// newDeployCmd creates the deploy command
func newDeployCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Run the deploy script on the production branch",
		Long: `Run the deploy script on the production branch.

Checks out the production branch, runs the package's deploy script and
returns to the development branch, even when the script fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				return actions.DeployAction(cmd.Context(), rt)
			})
		},
	}
}
