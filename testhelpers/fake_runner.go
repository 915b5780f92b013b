package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
)

// RunnerCall records one command received by a FakeRunner
type RunnerCall struct {
	Name        string
	Args        []string
	Interactive bool
}

// String returns the call as a command line
func (c RunnerCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner implements process.Runner without starting processes.
// Responses and failures are keyed by the full command line.
type FakeRunner struct {
	Calls    []RunnerCall
	outputs  map[string]string
	failures map[string]error
}

// NewFakeRunner creates a runner where every command succeeds with empty output
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		outputs:  make(map[string]string),
		failures: make(map[string]error),
	}
}

// OnOutput sets the captured output returned for a command line
func (f *FakeRunner) OnOutput(commandLine, output string) *FakeRunner {
	f.outputs[commandLine] = output
	return f
}

// Fail makes a command line fail with the given exit status
func (f *FakeRunner) Fail(commandLine string, exitCode int) *FakeRunner {
	name, args := splitCommandLine(commandLine)
	f.failures[commandLine] = npmflowerrors.NewCommandError(name, args, "", fmt.Sprintf("%s failed", name), exitCode, fmt.Errorf("exit status %d", exitCode))
	return f
}

// Run records an interactive command
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) error {
	call := RunnerCall{Name: name, Args: args, Interactive: true}
	f.Calls = append(f.Calls, call)
	return f.failures[call.String()]
}

// Output records a captured command and returns its scripted output
func (f *FakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	call := RunnerCall{Name: name, Args: args}
	f.Calls = append(f.Calls, call)
	if err := f.failures[call.String()]; err != nil {
		return "", err
	}
	return f.outputs[call.String()], nil
}

// CommandLines returns every recorded call as a command line, in order
func (f *FakeRunner) CommandLines() []string {
	lines := make([]string, len(f.Calls))
	for i, call := range f.Calls {
		lines[i] = call.String()
	}
	return lines
}

func splitCommandLine(commandLine string) (string, []string) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// FakePrompter answers prompts from a queue
type FakePrompter struct {
	Answers  []string
	Err      error
	Messages []string
}

// NewFakePrompter creates a prompter that returns answers in order
func NewFakePrompter(answers ...string) *FakePrompter {
	return &FakePrompter{Answers: answers}
}

// Input records the message and returns the next answer, or the default when none are left
func (p *FakePrompter) Input(message, defaultValue string) (string, error) {
	p.Messages = append(p.Messages, message)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Answers) == 0 {
		return defaultValue, nil
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

// PackageEnv renders KEY=VALUE lines the way `npm run env` prints them
func PackageEnv(vars map[string]string) string {
	var b strings.Builder
	b.WriteString("\n> demo-app@1.0.0 env\n> env\n\n")
	for _, key := range sortedKeys(vars) {
		fmt.Fprintf(&b, "%s=%s\n", key, vars[key])
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
