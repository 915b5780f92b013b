package npm

import (
	"context"
	"fmt"

	"npmflow.dev/npmflow/internal/process"
	"npmflow.dev/npmflow/internal/workflow"
)

// Client builds and runs npm commands
type Client struct {
	// Command is the npm executable
	Command string
	// VersionScript is the package script run to bump the version.
	// When empty, `npm version <bump> --no-git-tag-version` is used instead.
	VersionScript string
	// DeployScript is the package script run by deploy
	DeployScript string
	// StrictEnv rejects malformed `npm run env` lines instead of dropping them
	StrictEnv bool
	// Debugf receives diagnostics such as dropped environment lines
	Debugf func(format string, args ...interface{})
}

// ReadEnvironment runs `npm run env` and parses its output
func (c *Client) ReadEnvironment(ctx context.Context, runner process.Runner) (Environment, error) {
	output, err := runner.Output(ctx, c.command(), "run", "env")
	if err != nil {
		return Environment{}, fmt.Errorf("failed to read package environment: %w", err)
	}

	env, dropped, err := ParseEnvironment(output, c.StrictEnv)
	if err != nil {
		return Environment{}, fmt.Errorf("failed to parse package environment: %w", err)
	}
	for _, line := range dropped {
		c.debugf("Dropped malformed environment line: %q", line)
	}
	c.debugf("Read %d environment variables", env.Len())
	return env, nil
}

// VersionStep bumps the package version. bump is major, minor, patch or an explicit version.
func (c *Client) VersionStep(bump string) workflow.Step {
	if c.VersionScript == "" {
		return workflow.Run{Name: c.command(), Args: []string{"version", bump, "--no-git-tag-version"}}
	}
	return workflow.Run{Name: c.command(), Args: []string{"run", c.VersionScript, bump}}
}

// DeployStep runs the deploy script
func (c *Client) DeployStep() workflow.Step {
	return workflow.Run{Name: c.command(), Args: []string{"run", c.DeployScript}}
}

// CanDeploy reports whether the environment shows a deploy script
func (c *Client) CanDeploy(env Environment) bool {
	return c.DeployScript != "" && env.HasScript(c.DeployScript)
}

func (c *Client) command() string {
	if c.Command == "" {
		return "npm"
	}
	return c.Command
}

func (c *Client) debugf(format string, args ...interface{}) {
	if c.Debugf != nil {
		c.Debugf(format, args...)
	}
}
