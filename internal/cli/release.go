package cli

import (
	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/actions"
	"npmflow.dev/npmflow/internal/runtime"
)

// addFinishFlags registers the flags shared by release and hotfix finish
func addFinishFlags(cmd *cobra.Command, opts *actions.FinishOptions) {
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Tag message; skips the prompt")
	cmd.Flags().BoolVar(&opts.NoPrompt, "no-prompt", false, "Use the default tag message without asking")
	cmd.Flags().BoolVar(&opts.NoDeploy, "no-deploy", false, "Skip the deploy script")
	cmd.Flags().BoolVar(&opts.GitHubRelease, "github-release", false, "Publish a GitHub release for the new tag")
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// newReleaseCmd creates the release command
func newReleaseCmd() *cobra.Command {
	var finish actions.FinishOptions

	cmd := &cobra.Command{
		Use:   "release [version]",
		Short: "Start and finish a release of the next minor version",
		Long: `Start and finish a release of the next minor version.

Runs git flow release start, bumps the package version with npm, finishes the
release and runs the deploy script when the package has one. Pass a version
to release something other than the next minor version.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				return actions.ReleaseAction(cmd.Context(), rt, actions.ReleaseOptions{
					Stage:         actions.ReleaseAll,
					Version:       optionalArg(args),
					FinishOptions: finish,
				})
			})
		},
	}
	addFinishFlags(cmd, &finish)

	cmd.AddCommand(newReleaseStartCmd())
	cmd.AddCommand(newReleaseFinishCmd())

	return cmd
}

func newReleaseStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [version]",
		Short: "Create a release branch and bump the package version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				return actions.ReleaseAction(cmd.Context(), rt, actions.ReleaseOptions{
					Stage:   actions.ReleaseStart,
					Version: optionalArg(args),
				})
			})
		},
	}
}

func newReleaseFinishCmd() *cobra.Command {
	var finish actions.FinishOptions

	cmd := &cobra.Command{
		Use:   "finish [version]",
		Short: "Merge and tag the current release, then deploy",
		Long: `Merge and tag the current release, then deploy.

Without a version the release named by the current release branch is
finished.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(rt *runtime.Context) error {
				return actions.ReleaseAction(cmd.Context(), rt, actions.ReleaseOptions{
					Stage:         actions.ReleaseFinish,
					Version:       optionalArg(args),
					FinishOptions: finish,
				})
			})
		},
	}
	addFinishFlags(cmd, &finish)

	return cmd
}
