package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
	"npmflow.dev/npmflow/internal/process"
)

// Prompter reads a line of text from the user
type Prompter interface {
	Input(message, defaultValue string) (string, error)
}

// Reporter receives step progress notifications
type Reporter interface {
	StepStarted(step string)
	StepCompleted(step string, elapsed time.Duration)
	StepFailed(step string, err error)
	StepSkipped(step string)
	StepDryRun(step string)
}

// NopReporter discards all notifications
type NopReporter struct{}

func (NopReporter) StepStarted(string)                  {}
func (NopReporter) StepCompleted(string, time.Duration) {}
func (NopReporter) StepFailed(string, error)            {}
func (NopReporter) StepSkipped(string)                  {}
func (NopReporter) StepDryRun(string)                   {}

// StepError reports the step at which a plan stopped
type StepError struct {
	Plan string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	// Command errors already name the command line
	var cmdErr *npmflowerrors.CommandError
	if errors.As(e.Err, &cmdErr) {
		return fmt.Sprintf("%s: %v", e.Plan, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Plan, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor interprets plans one step at a time, stopping at the first failure
type Executor struct {
	runner   process.Runner
	prompter Prompter
	reporter Reporter
	dryRun   bool

	plan   string
	vars   Vars
	report *Report
}

// Option configures an Executor
type Option func(*Executor)

// WithPrompter sets the prompter used by Prompt steps
func WithPrompter(p Prompter) Option {
	return func(x *Executor) {
		x.prompter = p
	}
}

// WithReporter sets the progress reporter
func WithReporter(r Reporter) Option {
	return func(x *Executor) {
		x.reporter = r
	}
}

// WithDryRun reports Run and Call steps instead of executing them
func WithDryRun(dryRun bool) Option {
	return func(x *Executor) {
		x.dryRun = dryRun
	}
}

// NewExecutor creates an executor running commands through runner
func NewExecutor(runner process.Runner, opts ...Option) *Executor {
	x := &Executor{
		runner:   runner,
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// DryRun reports whether side-effecting steps are skipped
func (x *Executor) DryRun() bool {
	return x.dryRun
}

// Execute runs every step of the plan in order. The returned report lists
// each step's outcome; after a failure the remaining steps are marked skipped
// and the first failure is returned as a *StepError.
func (x *Executor) Execute(ctx context.Context, plan *Plan) (*Report, error) {
	x.plan = plan.Name
	x.vars = Vars{}
	x.report = &Report{Plan: plan.Name}

	err := x.runSteps(ctx, plan.Steps)
	return x.report, err
}

func (x *Executor) runSteps(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := x.runStep(ctx, step); err != nil {
			x.skip(steps[i+1:])
			return err
		}
	}
	return nil
}

func (x *Executor) runStep(ctx context.Context, step Step) error {
	if group, ok := step.(Scoped); ok {
		return group.Execute(ctx, x)
	}

	desc := step.Describe(x.vars)

	if err := ctx.Err(); err != nil {
		x.record(desc, StatusSkipped, err, 0)
		x.reporter.StepSkipped(desc)
		return &StepError{Plan: x.plan, Step: desc, Err: err}
	}

	if x.dryRun && hasSideEffects(step) {
		x.record(desc, StatusDryRun, nil, 0)
		x.reporter.StepDryRun(desc)
		return nil
	}

	x.reporter.StepStarted(desc)
	start := time.Now()
	err := step.Execute(ctx, x)
	elapsed := time.Since(start)
	if err != nil {
		x.record(desc, StatusFailed, err, elapsed)
		x.reporter.StepFailed(desc, err)
		return &StepError{Plan: x.plan, Step: desc, Err: err}
	}

	x.record(desc, StatusOK, nil, elapsed)
	x.reporter.StepCompleted(desc, elapsed)
	return nil
}

func (x *Executor) skip(steps []Step) {
	for _, step := range steps {
		if group, ok := step.(Scoped); ok {
			x.skip(group.Acquire)
			x.skip(group.Body)
			x.skip(group.Release)
			continue
		}
		desc := step.Describe(x.vars)
		x.record(desc, StatusSkipped, nil, 0)
		x.reporter.StepSkipped(desc)
	}
}

func (x *Executor) record(step string, status Status, err error, elapsed time.Duration) {
	x.report.Results = append(x.report.Results, Result{
		Step:     step,
		Status:   status,
		Err:      err,
		Duration: elapsed,
	})
}

func hasSideEffects(step Step) bool {
	switch step.(type) {
	case Run, Call:
		return true
	default:
		return false
	}
}
