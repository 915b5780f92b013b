// Package process runs external commands for npmflow.
package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
)

// DefaultOutputTimeout bounds commands whose output is captured
const DefaultOutputTimeout = 5 * time.Minute

// waitDelay caps how long a canceled command's children may hold its pipes open
const waitDelay = 2 * time.Second

// Runner executes external commands.
// Implementations must run one command at a time and return a *errors.CommandError on failure.
type Runner interface {
	// Run executes a command with stdin, stdout and stderr attached to the terminal.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes a command and returns its captured standard output.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// CommandRunner handles execution of external commands
type CommandRunner struct {
	workingDir string
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	timeout    time.Duration
}

// Option configures a CommandRunner
type Option func(*CommandRunner)

// WithWorkingDir sets the directory commands run in
func WithWorkingDir(dir string) Option {
	return func(r *CommandRunner) {
		r.workingDir = dir
	}
}

// WithStdio replaces the terminal streams attached to interactive commands
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *CommandRunner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithTimeout bounds every interactive command. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *CommandRunner) {
		r.timeout = timeout
	}
}

// NewCommandRunner creates a new CommandRunner attached to the process's standard streams
func NewCommandRunner(opts ...Option) *CommandRunner {
	r := &CommandRunner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a command interactively. Standard error is also captured so a
// failure can report what the command printed.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	var stderr bytes.Buffer
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return newCommandError(ctx, name, args, "", stderr.String(), err)
	}
	return nil
}

// Output executes a command and returns its standard output.
// If the context has no deadline, DefaultOutputTimeout applies.
func (r *CommandRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultOutputTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return "", newCommandError(ctx, name, args, stdout.String(), stderr.String(), err)
	}
	return stdout.String(), nil
}

func newCommandError(ctx context.Context, name string, args []string, stdout, stderr string, err error) error {
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			code = 124
		}
	}
	return npmflowerrors.NewCommandError(name, args, stdout, stderr, code, err)
}

// CommandLine formats a command for display
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
