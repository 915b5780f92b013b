package cli

import (
	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/runtime"
)

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// skipRuntime marks commands that run without a repository or configuration
const skipRuntime = "npmflow/skip-runtime"

type globalFlags struct {
	dryRun bool
	debug  bool
	dir    string
}

// NewRootCmd creates the root cobra command
func NewRootCmd(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "npmflow",
		Short: "npmflow runs git-flow releases and hotfixes for npm packages",
		Long: `npmflow runs git-flow releases and hotfixes for npm packages.

It starts and finishes release and hotfix branches, bumps the package version
with npm, tags the result and runs the package's deploy script. Any other
arguments are passed to git flow unchanged.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipRuntime] == "true" || isBuiltin(cmd.Name()) {
				return nil
			}
			return attachRuntime(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Print the commands that would run without running them")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Log every command and its duration")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "cwd", "C", "", "Run as if npmflow was started in this directory")

	rootCmd.AddCommand(newReleaseCmd())
	rootCmd.AddCommand(newHotfixCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd(info))

	return rootCmd
}

// attachRuntime builds the runtime for cmd unless one was already provided
func attachRuntime(cmd *cobra.Command, flags *globalFlags) error {
	if rt := runtime.FromContext(cmd.Context()); rt != nil {
		if flags.dryRun {
			rt.Config.DryRun = true
		}
		return nil
	}

	rt, err := runtime.Build(runtime.Options{
		Dir:    flags.dir,
		Debug:  flags.debug,
		DryRun: flags.dryRun,
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	cmd.SetContext(runtime.WithContext(cmd.Context(), rt))
	return nil
}

// run provides the runtime attached by the root command to fn
func run(cmd *cobra.Command, fn func(rt *runtime.Context) error) error {
	rt := runtime.FromContext(cmd.Context())
	if rt == nil {
		return errNoRuntime
	}
	defer func() { _ = rt.Close() }()
	return fn(rt)
}
