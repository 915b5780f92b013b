// Package scenario runs the npmflow binary inside a test scene with stub
// npm and git-flow executables that record how they were called.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"npmflow.dev/npmflow/testhelpers"
)

// stubScript logs its invocation, prints a canned response and fails when asked to
const stubScript = `#!/bin/sh
echo "%[1]s $*" >> "%[2]s/calls.log"
if [ "%[1]s $*" = "npm run env" ] && [ -f "%[2]s/package.env" ]; then
  cat "%[2]s/package.env"
fi
if [ -f "%[2]s/fail" ] && [ "$(head -n 1 "%[2]s/fail")" = "%[1]s $*" ]; then
  echo "%[1]s: simulated failure" >&2
  exit "$(tail -n 1 "%[2]s/fail")"
fi
exit 0
`

// Scenario combines a Scene with stub tools and the npmflow binary
type Scenario struct {
	T          *testing.T
	Scene      *testhelpers.Scene
	BinaryPath string
	stubDir    string
}

// Result is the outcome of one npmflow invocation
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// NewScenario creates a scene with the given setup, installs the stubs and
// puts them first on PATH.
// NOTE: This function is NOT safe for parallel tests as it uses t.Setenv and NewScene.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables are shell scripts")
	}

	binaryPath := testhelpers.GetSharedBinaryPath()
	require.NoError(t, testhelpers.GetBinaryError())

	stubDir := t.TempDir()
	for _, tool := range []string{"npm", "git-flow"} {
		name := tool
		if tool == "git-flow" {
			name = "git flow"
		}
		script := fmt.Sprintf(stubScript, name, stubDir)
		//nolint:gosec // stubs must be executable
		require.NoError(t, os.WriteFile(filepath.Join(stubDir, tool), []byte(script), 0o755))
	}

	t.Setenv("PATH", stubDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("NPMFLOW_TEST_NO_INTERACTIVE", "1")
	t.Setenv("NPMFLOW_LOG_FILE", filepath.Join(stubDir, "npmflow.log"))
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")

	return &Scenario{
		T:          t,
		Scene:      testhelpers.NewScene(t, setup),
		BinaryPath: binaryPath,
		stubDir:    stubDir,
	}
}

// WithPackage makes `npm run env` describe a package with the given variables
func (s *Scenario) WithPackage(vars map[string]string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, os.WriteFile(filepath.Join(s.stubDir, "package.env"), []byte(testhelpers.PackageEnv(vars)), 0o600))
	return s
}

// FailOn makes the stubbed command line exit with code
func (s *Scenario) FailOn(commandLine string, code int) *Scenario {
	s.T.Helper()
	contents := fmt.Sprintf("%s\n%d\n", commandLine, code)
	require.NoError(s.T, os.WriteFile(filepath.Join(s.stubDir, "fail"), []byte(contents), 0o600))
	return s
}

// Run executes npmflow with args in the scene directory
func (s *Scenario) Run(args ...string) Result {
	s.T.Helper()

	cmd := exec.Command(s.BinaryPath, args...)
	cmd.Dir = s.Scene.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := Result{}
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		require.NoError(s.T, err, "failed to start npmflow")
	}
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result
}

// Calls returns the stubbed commands in the order they ran
func (s *Scenario) Calls() []string {
	s.T.Helper()
	data, err := os.ReadFile(filepath.Join(s.stubDir, "calls.log"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(s.T, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// CurrentBranch returns the scene's checked-out branch
func (s *Scenario) CurrentBranch() string {
	s.T.Helper()
	return testhelpers.Must(s.Scene.Repo.CurrentBranchName())
}
