package actions

import (
	"context"
	"fmt"

	"npmflow.dev/npmflow/internal/git"
	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/version"
	"npmflow.dev/npmflow/internal/workflow"
)

// HotfixStartOptions contains options for hotfix start
type HotfixStartOptions struct {
	// Name of the hotfix branch; defaults to the next patch version
	Name string
}

// HotfixStartAction creates a hotfix branch and bumps the patch version
func HotfixStartAction(ctx context.Context, rt *runtime.Context, opts HotfixStartOptions) error {
	name := opts.Name
	if name == "" {
		env, err := rt.PackageEnv(ctx)
		if err != nil {
			return err
		}
		current, err := packageVersion(env)
		if err != nil {
			return err
		}
		if name, err = version.Next(current, version.Patch); err != nil {
			return fmt.Errorf("cannot compute hotfix version: %w", err)
		}
	}

	plan := workflow.NewPlan("hotfix start",
		rt.Flow().StartStep(git.Hotfix, name),
		rt.Npm().VersionStep(version.Patch.String()),
	)
	return run(ctx, rt, plan, fmt.Sprintf("Started hotfix %s", name))
}

// HotfixFinishOptions contains options for hotfix finish
type HotfixFinishOptions struct {
	// Name of the hotfix branch; empty finishes the current one
	Name string
	FinishOptions
}

// HotfixFinishAction merges and tags the hotfix with the current package
// version, then deploys when the package has a deploy script
func HotfixFinishAction(ctx context.Context, rt *runtime.Context, opts HotfixFinishOptions) error {
	env, err := rt.PackageEnv(ctx)
	if err != nil {
		return err
	}
	current, err := packageVersion(env)
	if err != nil {
		return err
	}

	plan := workflow.NewPlan("hotfix",
		tagMessageStep(rt, opts.FinishOptions, "Hotfix "+current),
		rt.Flow().FinishStep(git.Hotfix, git.FinishOptions{
			Name:       opts.Name,
			TagName:    current,
			MessageVar: messageVar,
		}),
	)
	finishTail(rt, plan, env, opts.FinishOptions, versionTag(rt, current))

	return run(ctx, rt, plan, fmt.Sprintf("Released hotfix %s", current))
}
