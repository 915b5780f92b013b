package workflow

import "time"

// Status is the outcome of a single step
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusDryRun  Status = "dry-run"
)

// Result is the outcome of one executed (or skipped) step
type Result struct {
	Step     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Report lists step outcomes in execution order
type Report struct {
	Plan    string
	Results []Result
}

// Failed returns true if any step failed
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Steps returns the descriptions of steps with the given status, in order.
// With no status, every step is returned.
func (r *Report) Steps(statuses ...Status) []string {
	var steps []string
	for _, res := range r.Results {
		if len(statuses) == 0 || containsStatus(statuses, res.Status) {
			steps = append(steps, res.Step)
		}
	}
	return steps
}

func containsStatus(statuses []Status, status Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
