package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command
func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the npmflow version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipRuntime: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "npmflow %s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
			return err
		},
	}
}
