package actions

import (
	"context"
	"fmt"
	"strings"

	"npmflow.dev/npmflow/internal/git"
	"npmflow.dev/npmflow/internal/github"
	"npmflow.dev/npmflow/internal/npm"
	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/tui"
	"npmflow.dev/npmflow/internal/workflow"
)

// messageVar holds the tag message between the prompt and the finish step
const messageVar = "message"

// FinishOptions are shared by release finish and hotfix finish
type FinishOptions struct {
	// Message is the tag message; when set no prompt is shown
	Message string
	// NoPrompt uses the default tag message instead of asking
	NoPrompt bool
	// NoDeploy skips the deploy sequence even when a deploy script exists
	NoDeploy bool
	// GitHubRelease publishes a GitHub release for the new tag
	GitHubRelease bool
}

// tagMessageStep asks for the tag message, or records the given one
func tagMessageStep(rt *runtime.Context, opts FinishOptions, defaultMessage string) workflow.Step {
	if opts.Message != "" {
		return workflow.Prompt{Key: messageVar, Message: "Tag message", Default: opts.Message, Skip: true}
	}
	return workflow.Prompt{
		Key:     messageVar,
		Message: "Tag message",
		Default: defaultMessage,
		Skip:    opts.NoPrompt || !rt.Config.Prompt,
	}
}

// deployGroup checks out the production branch, runs the deploy script and
// always returns to the development branch once the checkout succeeded
func deployGroup(rt *runtime.Context) workflow.Step {
	return workflow.Scoped{
		Label:   "deploy",
		Acquire: []workflow.Step{git.CheckoutStep(rt.Config.Branches.Production)},
		Body:    []workflow.Step{rt.Npm().DeployStep()},
		Release: []workflow.Step{git.CheckoutStep(rt.Config.Branches.Development)},
	}
}

// finishTail appends the optional GitHub release and deploy steps after a finish
func finishTail(rt *runtime.Context, plan *workflow.Plan, env npm.Environment, opts FinishOptions, tag string) {
	if opts.GitHubRelease || rt.Config.GitHub.Release {
		plan.Append(githubReleaseStep(rt, tag))
	}

	switch {
	case opts.NoDeploy:
		rt.Splog.Debug("Deploy disabled")
	case rt.Npm().CanDeploy(env):
		plan.Append(deployGroup(rt))
	default:
		rt.Splog.Warn("No %q script in package environment, skipping deploy", rt.Config.Npm.DeployScript)
	}
}

func githubReleaseStep(rt *runtime.Context, tag string) workflow.Step {
	return workflow.Call{
		Label: "create GitHub release " + tag,
		Fn: func(ctx context.Context, vars workflow.Vars) error {
			client, err := rt.GitHubClient(ctx)
			if err != nil {
				return err
			}
			info, err := client.CreateRelease(ctx, github.CreateReleaseOptions{
				TagName: tag,
				Body:    vars[messageVar],
			})
			if err != nil {
				return err
			}
			if info.HTMLURL != "" {
				rt.Splog.Info("Published %s", tui.ColorCyan(info.HTMLURL))
			}
			return nil
		},
	}
}

// versionTag returns the tag git-flow creates for version
func versionTag(rt *runtime.Context, version string) string {
	return rt.Config.Flow.VersionTagPrefix + version
}

// run executes the plan and prints a summary line on success
func run(ctx context.Context, rt *runtime.Context, plan *workflow.Plan, done string) error {
	report, err := rt.NewExecutor().Execute(ctx, plan)
	if err != nil {
		return err
	}
	if rt.Config.DryRun {
		rt.Splog.Info("Dry run: %d steps not executed", len(report.Steps(workflow.StatusDryRun)))
		return nil
	}
	if done != "" {
		rt.Splog.Info("%s", tui.ColorGreen(done))
	}
	return nil
}

// packageVersion reads the current package version from the environment
func packageVersion(env npm.Environment) (string, error) {
	v, err := env.Version()
	if err != nil {
		return "", fmt.Errorf("cannot determine package version: %w", err)
	}
	return v, nil
}

// branchName strips prefix from branch, reporting whether it was present
func branchName(branch, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(branch, prefix) || branch == prefix {
		return "", false
	}
	return strings.TrimPrefix(branch, prefix), true
}
