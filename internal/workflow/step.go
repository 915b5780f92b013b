package workflow

import (
	"context"
	"errors"
	"strings"

	"npmflow.dev/npmflow/internal/process"
)

// Vars holds values produced by earlier steps of a plan, such as a prompted tag message
type Vars map[string]string

// Step is one unit of a workflow plan
type Step interface {
	// Describe returns a one-line description of the step, resolved against vars
	Describe(vars Vars) string
	// Execute performs the step using the executor's collaborators
	Execute(ctx context.Context, x *Executor) error
}

// Run executes an external command with the terminal attached
type Run struct {
	Name string
	Args []string
	// Extra appends arguments derived from values of earlier steps
	Extra func(vars Vars) []string
}

func (r Run) argv(vars Vars) []string {
	args := append([]string{}, r.Args...)
	if r.Extra != nil {
		args = append(args, r.Extra(vars)...)
	}
	return args
}

// Describe returns the command line the step runs
func (r Run) Describe(vars Vars) string {
	return process.CommandLine(r.Name, r.argv(vars)...)
}

// Execute runs the command
func (r Run) Execute(ctx context.Context, x *Executor) error {
	return x.runner.Run(ctx, r.Name, r.argv(x.vars)...)
}

// Prompt reads one line of input into Vars[Key]
type Prompt struct {
	Key     string
	Message string
	Default string
	// Skip uses Default without asking
	Skip bool
}

// Describe returns the prompt message
func (p Prompt) Describe(_ Vars) string {
	return "prompt: " + p.Message
}

// Execute asks the user. The default is used for an empty answer or when prompting is not possible.
func (p Prompt) Execute(_ context.Context, x *Executor) error {
	if p.Skip || x.dryRun || x.prompter == nil {
		x.vars[p.Key] = p.Default
		return nil
	}
	answer, err := x.prompter.Input(p.Message, p.Default)
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = p.Default
	}
	x.vars[p.Key] = answer
	return nil
}

// Call runs an in-process operation, such as an API request
type Call struct {
	Label string
	Fn    func(ctx context.Context, vars Vars) error
}

// Describe returns the label
func (c Call) Describe(_ Vars) string {
	return c.Label
}

// Execute invokes the function
func (c Call) Execute(ctx context.Context, x *Executor) error {
	return c.Fn(ctx, x.vars)
}

// Scoped groups steps that acquire a resource, use it, and release it.
// Release runs whenever every Acquire step succeeded, even if Body failed.
type Scoped struct {
	Label   string
	Acquire []Step
	Body    []Step
	Release []Step
}

// Describe returns the label
func (s Scoped) Describe(_ Vars) string {
	return s.Label
}

// Execute runs the group. Errors from Body and Release are joined.
func (s Scoped) Execute(ctx context.Context, x *Executor) error {
	if err := x.runSteps(ctx, s.Acquire); err != nil {
		x.skip(s.Body)
		x.skip(s.Release)
		return err
	}

	bodyErr := x.runSteps(ctx, s.Body)

	// Restore state even when the body was interrupted
	releaseCtx := ctx
	if ctx.Err() != nil {
		releaseCtx = context.WithoutCancel(ctx)
	}
	releaseErr := x.runSteps(releaseCtx, s.Release)

	return errors.Join(bodyErr, releaseErr)
}

// Plan is an ordered sequence of steps executed by one Executor
type Plan struct {
	Name  string
	Steps []Step
}

// NewPlan creates a plan
func NewPlan(name string, steps ...Step) *Plan {
	return &Plan{Name: name, Steps: steps}
}

// Append adds steps to the end of the plan
func (p *Plan) Append(steps ...Step) {
	p.Steps = append(p.Steps, steps...)
}
