package tui

import (
	"time"
)

// StepReporter prints workflow progress through a Splog
type StepReporter struct {
	splog *Splog
}

// NewStepReporter creates a reporter writing to splog
func NewStepReporter(splog *Splog) *StepReporter {
	return &StepReporter{splog: splog}
}

// StepStarted announces the step about to run
func (r *StepReporter) StepStarted(step string) {
	r.splog.Info("%s %s", ColorCyan("▸"), step)
}

// StepCompleted logs the step duration at debug level
func (r *StepReporter) StepCompleted(step string, elapsed time.Duration) {
	r.splog.Debug("%s %s (%s)", ColorGreen("✓"), step, elapsed.Round(time.Millisecond))
}

// StepFailed logs the failure at debug level; the caller reports the error itself
func (r *StepReporter) StepFailed(step string, err error) {
	r.splog.Debug("%s %s: %v", ColorRed("✗"), step, err)
}

// StepSkipped notes a step that did not run after an earlier failure
func (r *StepReporter) StepSkipped(step string) {
	r.splog.Info("%s", ColorDim("skipped: "+step))
}

// StepDryRun prints the step instead of running it
func (r *StepReporter) StepDryRun(step string) {
	r.splog.Info("+ %s", step)
}
