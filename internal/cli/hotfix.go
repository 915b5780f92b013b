package cli

import (
	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/actions"
	"npmflow.dev/npmflow/internal/runtime"
)

// newHotfixCmd creates the hotfix command
func newHotfixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotfix",
		Short: "Start or finish a hotfix of the production branch",
	}

	cmd.AddCommand(newHotfixStartCmd())
	cmd.AddCommand(newHotfixFinishCmd())

	return cmd
}

func newHotfixStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [name]",
		Short: "Create a hotfix branch and bump the patch version",
		Long: `Create a hotfix branch and bump the patch version.

The branch is named after the next patch version unless a name is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				return actions.HotfixStartAction(cmd.Context(), rt, actions.HotfixStartOptions{
					Name: optionalArg(args),
				})
			})
		},
	}
}

func newHotfixFinishCmd() *cobra.Command {
	var finish actions.FinishOptions

	cmd := &cobra.Command{
		Use:   "finish [name]",
		Short: "Merge and tag the hotfix, then deploy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				return actions.HotfixFinishAction(cmd.Context(), rt, actions.HotfixFinishOptions{
					Name:          optionalArg(args),
					FinishOptions: finish,
				})
			})
		},
	}
	addFinishFlags(cmd, &finish)

	return cmd
}
