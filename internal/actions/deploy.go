package actions

import (
	"context"
	"fmt"

	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/workflow"
)

// DeployAction deploys the production branch and returns to the development branch
func DeployAction(ctx context.Context, rt *runtime.Context) error {
	env, err := rt.PackageEnv(ctx)
	if err != nil {
		return err
	}
	if !rt.Npm().CanDeploy(env) {
		return fmt.Errorf("package has no %q script", rt.Config.Npm.DeployScript)
	}

	plan := workflow.NewPlan("deploy", deployGroup(rt))
	return run(ctx, rt, plan, fmt.Sprintf("Deployed %s", rt.Config.Branches.Production))
}
