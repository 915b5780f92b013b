package actions

import (
	"context"

	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/workflow"
)

// PassthroughAction forwards args verbatim to the branching tool.
// A failing command's exit code is kept in the returned error.
func PassthroughAction(ctx context.Context, rt *runtime.Context, args []string) error {
	plan := workflow.NewPlan(rt.Config.Flow.Command, rt.Flow().PassthroughStep(args))
	return run(ctx, rt, plan, "")
}
