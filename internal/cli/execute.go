package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"npmflow.dev/npmflow/internal/actions"
	npmflowerrors "npmflow.dev/npmflow/internal/errors"
	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/tui"
)

var errNoRuntime = errors.New("npmflow runtime not initialized")

// builtins are handled by cobra even though they are not registered commands
var builtins = []string{"help", "completion", "__complete", "__completeNoDesc"}

// Execute runs root with args and returns the process exit status.
// Arguments that do not name an npmflow command are passed to git flow.
func Execute(ctx context.Context, root *cobra.Command, args []string) int {
	var err error
	if rest := skipGlobalFlags(root, args); len(rest) > 0 && isPassthrough(root, rest[0]) {
		err = passthrough(ctx, root, args[:len(args)-len(rest)], rest)
	} else {
		root.SetArgs(args)
		err = root.ExecuteContext(ctx)
	}
	if err == nil {
		return 0
	}

	reportError(root, err)
	return npmflowerrors.ExitCode(err)
}

// skipGlobalFlags returns args starting at the first word that is not a
// persistent root flag or its value
func skipGlobalFlags(root *cobra.Command, args []string) []string {
	flags := root.PersistentFlags()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return args[i:]
		}
		if arg == "--" {
			return args[i+1:]
		}

		name, hasValue := strings.TrimLeft(arg, "-"), false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, hasValue = name[:eq], true
		}
		flag := flags.Lookup(name)
		if flag == nil && !strings.HasPrefix(arg, "--") && name != "" {
			// -C dir, -C=dir or -Cdir
			flag = flags.ShorthandLookup(name[:1])
			hasValue = hasValue || len(name) > 1
		}
		if flag == nil {
			// not ours; let cobra report it
			return nil
		}
		if !hasValue && flag.NoOptDefVal == "" {
			i++
		}
	}
	return nil
}

func isBuiltin(name string) bool {
	for _, builtin := range builtins {
		if name == builtin {
			return true
		}
	}
	return false
}

func isPassthrough(root *cobra.Command, word string) bool {
	if isBuiltin(word) {
		return false
	}
	for _, cmd := range root.Commands() {
		if cmd.Name() == word || cmd.HasAlias(word) {
			return false
		}
	}
	return true
}

// passthrough parses the global flags, prepares the runtime and forwards args to git flow
func passthrough(ctx context.Context, root *cobra.Command, globals, args []string) error {
	root.SetContext(ctx)
	if err := root.PersistentFlags().Parse(globals); err != nil {
		return err
	}
	if err := root.PersistentPreRunE(root, args); err != nil {
		return err
	}
	return run(root, func(rt *runtime.Context) error {
		return actions.PassthroughAction(root.Context(), rt, args)
	})
}

// reportError prints err to the command's stderr. The runtime may not exist
// yet, so a console-only logger is used.
func reportError(root *cobra.Command, err error) {
	if errors.Is(err, npmflowerrors.ErrCanceled) {
		fmt.Fprintln(root.ErrOrStderr(), tui.ColorDim("Canceled"))
		return
	}
	splog, logErr := tui.NewSplogWithOptions(tui.SplogOptions{Stdout: root.OutOrStdout(), Stderr: root.ErrOrStderr()})
	if logErr != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	splog.Error("%v", err)
}
