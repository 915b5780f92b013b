package actions

import (
	"context"

	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/version"
)

// NextVersionAction returns the version that follows the package version at part
func NextVersionAction(ctx context.Context, rt *runtime.Context, part version.Part) (string, error) {
	env, err := rt.PackageEnv(ctx)
	if err != nil {
		return "", err
	}
	current, err := packageVersion(env)
	if err != nil {
		return "", err
	}
	return version.Next(current, part)
}
