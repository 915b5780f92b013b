package git

import (
	"strings"

	"npmflow.dev/npmflow/internal/workflow"
)

// BranchKind is a git-flow branch type handled by npmflow
type BranchKind string

const (
	Release BranchKind = "release"
	Hotfix  BranchKind = "hotfix"
)

// Flow builds git-flow commands
type Flow struct {
	// Command is the branching tool invocation, e.g. "git flow"
	Command string
	// Push publishes branches and tags when finishing
	Push bool
}

// FinishOptions configures a finish step
type FinishOptions struct {
	// Name is the release version or hotfix name; empty finishes the current branch
	Name string
	// TagName overrides the tag git-flow creates
	TagName string
	// MessageVar names the workflow variable holding the tag message
	MessageVar string
}

// StartStep starts a release or hotfix branch
func (f Flow) StartStep(kind BranchKind, name string) workflow.Step {
	bin, args := f.command()
	return workflow.Run{Name: bin, Args: append(args, string(kind), "start", name)}
}

// FinishStep finishes a release or hotfix branch. The tag message is read
// from the workflow variables when the step runs, so it can come from a prompt.
func (f Flow) FinishStep(kind BranchKind, opts FinishOptions) workflow.Step {
	bin, args := f.command()
	push := f.Push
	return workflow.Run{
		Name: bin,
		Args: append(args, string(kind), "finish"),
		Extra: func(vars workflow.Vars) []string {
			var extra []string
			if opts.MessageVar != "" {
				if msg := vars[opts.MessageVar]; msg != "" {
					extra = append(extra, "-m", msg)
				}
			}
			if push {
				extra = append(extra, "-p")
			}
			if opts.TagName != "" {
				extra = append(extra, "--tagname", opts.TagName)
			}
			if opts.Name != "" {
				extra = append(extra, opts.Name)
			}
			return extra
		},
	}
}

// PassthroughStep forwards arguments verbatim to the branching tool
func (f Flow) PassthroughStep(userArgs []string) workflow.Step {
	bin, args := f.command()
	return workflow.Run{Name: bin, Args: append(args, userArgs...)}
}

// CheckoutStep switches the working tree to branch
func CheckoutStep(branch string) workflow.Step {
	return workflow.Run{Name: "git", Args: []string{"checkout", branch}}
}

func (f Flow) command() (string, []string) {
	fields := strings.Fields(f.Command)
	if len(fields) == 0 {
		return "git", []string{"flow"}
	}
	return fields[0], fields[1:]
}
