package actions

import (
	"context"
	"fmt"

	"npmflow.dev/npmflow/internal/git"
	"npmflow.dev/npmflow/internal/npm"
	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/version"
	"npmflow.dev/npmflow/internal/workflow"
)

// ReleaseStage selects which part of the release workflow runs
type ReleaseStage int

const (
	// ReleaseAll starts and immediately finishes a release
	ReleaseAll ReleaseStage = iota
	ReleaseStart
	ReleaseFinish
)

func (s ReleaseStage) String() string {
	switch s {
	case ReleaseStart:
		return "release start"
	case ReleaseFinish:
		return "release finish"
	default:
		return "release"
	}
}

// ReleaseOptions contains options for the release command
type ReleaseOptions struct {
	Stage ReleaseStage
	// Version overrides the computed next minor version when starting, and
	// names the release branch when finishing
	Version string
	FinishOptions
}

// ReleaseAction starts and/or finishes a git-flow release.
//
// Starting creates release/<next minor> and bumps the package version.
// Finishing merges and tags the release, then deploys when the package has
// a deploy script.
func ReleaseAction(ctx context.Context, rt *runtime.Context, opts ReleaseOptions) error {
	if opts.Version != "" {
		if err := version.Validate(opts.Version); err != nil {
			return fmt.Errorf("invalid release version: %w", err)
		}
	}

	env, err := rt.PackageEnv(ctx)
	if err != nil {
		return err
	}

	plan := workflow.NewPlan(opts.Stage.String())
	name := opts.Version

	if opts.Stage != ReleaseFinish {
		next, err := releaseVersion(env, opts.Version)
		if err != nil {
			return err
		}
		bump := version.Minor.String()
		if opts.Version != "" {
			bump = opts.Version
		}
		plan.Append(
			rt.Flow().StartStep(git.Release, next),
			rt.Npm().VersionStep(bump),
		)
		name = next
	}

	if opts.Stage != ReleaseStart {
		resolved := name
		if resolved == "" {
			if resolved, err = currentRelease(rt, env); err != nil {
				return err
			}
		}
		plan.Append(
			tagMessageStep(rt, opts.FinishOptions, "Release "+resolved),
			rt.Flow().FinishStep(git.Release, git.FinishOptions{Name: name, MessageVar: messageVar}),
		)
		finishTail(rt, plan, env, opts.FinishOptions, versionTag(rt, resolved))
	}

	return run(ctx, rt, plan, releaseSummary(opts.Stage, name))
}

// releaseVersion returns the explicit version or the next minor version of the package
func releaseVersion(env npm.Environment, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	current, err := packageVersion(env)
	if err != nil {
		return "", err
	}
	next, err := version.Next(current, version.Minor)
	if err != nil {
		return "", fmt.Errorf("cannot compute next release version: %w", err)
	}
	return next, nil
}

// currentRelease names the release being finished: the checked out release
// branch, or the package version when not on one
func currentRelease(rt *runtime.Context, env npm.Environment) (string, error) {
	if branch, err := rt.CurrentBranch(); err == nil {
		if name, ok := branchName(branch, rt.Config.Flow.ReleasePrefix); ok {
			return name, nil
		}
	}
	return packageVersion(env)
}

func releaseSummary(stage ReleaseStage, name string) string {
	switch {
	case stage == ReleaseStart:
		return fmt.Sprintf("Started release %s", name)
	case name == "":
		return "Finished release"
	default:
		return fmt.Sprintf("Released %s", name)
	}
}
