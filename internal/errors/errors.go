// Package errors provides sentinel errors and custom error types for the npmflow application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrCommandFailed indicates that an external command exited unsuccessfully
	ErrCommandFailed = errors.New("command failed")

	// ErrMalformedEnv indicates that the package manager's environment dump could not be parsed
	ErrMalformedEnv = errors.New("malformed environment output")

	// ErrInvalidVersion indicates that a version string could not be incremented
	ErrInvalidVersion = errors.New("invalid version")

	// ErrMissingVersion indicates that the environment carries no package version
	ErrMissingVersion = errors.New("package version not found in environment")

	// ErrCanceled indicates that the user canceled an interactive prompt
	ErrCanceled = errors.New("canceled")

	// ErrInteractiveDisabled is returned when interactive prompts are disabled via NPMFLOW_TEST_NO_INTERACTIVE
	ErrInteractiveDisabled = errors.New("interactive prompts are disabled (NPMFLOW_TEST_NO_INTERACTIVE is set)")
)

// CommandError represents an error from an external command execution
type CommandError struct {
	Name     string
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.CommandLine())
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit status %d)", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", stderr)
	}
	if e.ExitCode <= 0 && e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

// CommandLine returns the command and its arguments joined by spaces
func (e *CommandError) CommandLine() string {
	if len(e.Args) == 0 {
		return e.Name
	}
	return e.Name + " " + strings.Join(e.Args, " ")
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrCommandFailed
func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

// NewCommandError creates a new CommandError
func NewCommandError(name string, args []string, stdout, stderr string, exitCode int, err error) *CommandError {
	return &CommandError{
		Name:     name,
		Args:     args,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Err:      err,
	}
}

// MalformedEnvLineError represents a line of `npm run env` output that is not KEY=VALUE
type MalformedEnvLineError struct {
	Line int
	Text string
}

func (e *MalformedEnvLineError) Error() string {
	return fmt.Sprintf("malformed environment line %d: %q (expected KEY=VALUE)", e.Line, e.Text)
}

// Is returns true if the target error is ErrMalformedEnv
func (e *MalformedEnvLineError) Is(target error) bool {
	return target == ErrMalformedEnv
}

// NewMalformedEnvLineError creates a new MalformedEnvLineError
func NewMalformedEnvLineError(line int, text string) *MalformedEnvLineError {
	return &MalformedEnvLineError{Line: line, Text: text}
}

// InvalidVersionComponentError represents a version component that is not a non-negative integer
type InvalidVersionComponentError struct {
	Version   string
	Index     int
	Component string
}

func (e *InvalidVersionComponentError) Error() string {
	return fmt.Sprintf("invalid version component %q at position %d in %q", e.Component, e.Index, e.Version)
}

// Is returns true if the target error is ErrInvalidVersion
func (e *InvalidVersionComponentError) Is(target error) bool {
	return target == ErrInvalidVersion
}

// NewInvalidVersionComponentError creates a new InvalidVersionComponentError
func NewInvalidVersionComponentError(version string, index int, component string) *InvalidVersionComponentError {
	return &InvalidVersionComponentError{
		Version:   version,
		Index:     index,
		Component: component,
	}
}

// ExitCode maps an error to a process exit status.
// A failed subprocess propagates its own exit status; any other failure is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}
