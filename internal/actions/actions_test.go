package actions_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"npmflow.dev/npmflow/internal/actions"
	"npmflow.dev/npmflow/internal/config"
	npmflowerrors "npmflow.dev/npmflow/internal/errors"
	"npmflow.dev/npmflow/internal/git"
	"npmflow.dev/npmflow/internal/github"
	"npmflow.dev/npmflow/internal/runtime"
	"npmflow.dev/npmflow/internal/tui"
	"npmflow.dev/npmflow/internal/version"
	"npmflow.dev/npmflow/testhelpers"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type fixture struct {
	rt       *runtime.Context
	runner   *testhelpers.FakeRunner
	prompter *testhelpers.FakePrompter
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newFixture(t *testing.T, env map[string]string, answers ...string) *fixture {
	t.Helper()
	f := &fixture{
		runner:   testhelpers.NewFakeRunner(),
		prompter: testhelpers.NewFakePrompter(answers...),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	if env != nil {
		f.runner.OnOutput("npm run env", testhelpers.PackageEnv(env))
	}
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Stdout: f.stdout, Stderr: f.stderr})
	require.NoError(t, err)
	f.rt = runtime.NewContext(config.Default(), splog, f.runner)
	f.rt.Prompter = f.prompter
	f.rt.Reporter = tui.NewStepReporter(splog)
	return f
}

func withDeploy(version string) map[string]string {
	return map[string]string{
		"npm_package_name":           "web-app",
		"npm_package_version":        version,
		"npm_package_scripts_deploy": "./scripts/deploy.sh",
	}
}

func withoutDeploy(version string) map[string]string {
	return map[string]string{
		"npm_package_name":    "web-app",
		"npm_package_version": version,
	}
}

func TestReleaseAction(t *testing.T) {
	t.Run("start, finish and deploy in order", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.0"), "Release notes")

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.NoError(t, err)

		require.Equal(t, []string{
			"npm run env",
			"git flow release start 1.5.0",
			"npm run version minor",
			"git flow release finish -m Release notes -p 1.5.0",
			"git checkout master",
			"npm run deploy",
			"git checkout develop",
		}, f.runner.CommandLines())
		require.Equal(t, []string{"flow", "release", "finish", "-m", "Release notes", "-p", "1.5.0"}, f.runner.Calls[3].Args)
		require.Equal(t, []string{"Tag message"}, f.prompter.Messages)
		require.Contains(t, f.stdout.String(), "Released 1.5.0")
	})

	t.Run("failed start never bumps or finishes", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.0"))
		f.runner.Fail("git flow release start 1.5.0", 128)

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.Error(t, err)
		require.ErrorIs(t, err, npmflowerrors.ErrCommandFailed)
		require.Equal(t, 128, npmflowerrors.ExitCode(err))
		require.Equal(t, []string{"npm run env", "git flow release start 1.5.0"}, f.runner.CommandLines())
		require.Empty(t, f.prompter.Messages)
		require.Contains(t, f.stdout.String(), "skipped: npm run version minor")
	})

	t.Run("failing deploy still returns to develop", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.0"), "Release 1.5.0")
		f.runner.Fail("npm run deploy", 2)

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.Error(t, err)
		require.Equal(t, 2, npmflowerrors.ExitCode(err))
		lines := f.runner.CommandLines()
		require.Equal(t, "git checkout develop", lines[len(lines)-1])
		require.Contains(t, err.Error(), "npm run deploy")
	})

	t.Run("explicit version must be numeric", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.0"))

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{Version: "strat"})
		require.ErrorIs(t, err, npmflowerrors.ErrInvalidVersion)
		require.Empty(t, f.runner.Calls)
	})

	t.Run("start only with explicit version", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.0"))

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{
			Stage:   actions.ReleaseStart,
			Version: "2.0.0",
		})
		require.NoError(t, err)
		require.Equal(t, []string{
			"npm run env",
			"git flow release start 2.0.0",
			"npm run version 2.0.0",
		}, f.runner.CommandLines())
		require.Contains(t, f.stdout.String(), "Started release 2.0.0")
	})

	t.Run("npm version without a version script", func(t *testing.T) {
		f := newFixture(t, withoutDeploy("0.9.3"))
		f.rt.Config.Npm.VersionScript = ""

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{Stage: actions.ReleaseStart})
		require.NoError(t, err)
		require.Equal(t, []string{
			"npm run env",
			"git flow release start 0.10.0",
			"npm version minor --no-git-tag-version",
		}, f.runner.CommandLines())
	})

	t.Run("finish with message skips the prompt and deploy when disabled", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.5.0"))

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{
			Stage:   actions.ReleaseFinish,
			Version: "1.5.0",
			FinishOptions: actions.FinishOptions{
				Message:  "Ship it",
				NoDeploy: true,
			},
		})
		require.NoError(t, err)
		require.Empty(t, f.prompter.Messages)
		require.Equal(t, []string{
			"npm run env",
			"git flow release finish -m Ship it -p 1.5.0",
		}, f.runner.CommandLines())
	})

	t.Run("no prompt uses the default message", func(t *testing.T) {
		f := newFixture(t, withoutDeploy("1.5.0"))
		f.rt.Config.Prompt = false

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{
			Stage:   actions.ReleaseFinish,
			Version: "1.5.0",
		})
		require.NoError(t, err)
		require.Empty(t, f.prompter.Messages)
		require.Equal(t, "git flow release finish -m Release 1.5.0 -p 1.5.0", f.runner.CommandLines()[1])
	})

	t.Run("finish current release branch and publish on GitHub", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.FlowSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("release/1.5.0"))
		repo, err := git.OpenRepository(scene.Dir)
		require.NoError(t, err)

		f := newFixture(t, withoutDeploy("1.5.0"), "")
		f.rt.Repo = repo
		f.rt.Config.Flow.VersionTagPrefix = "v"

		mock := testhelpers.NewMockGitHubServerConfig()
		gh, owner, name := testhelpers.NewMockGitHubClient(t, mock)
		f.rt.GitHub = func(context.Context) (github.Client, error) {
			return github.NewClientFromGitHub(gh, owner, name), nil
		}

		err = actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{
			Stage:         actions.ReleaseFinish,
			FinishOptions: actions.FinishOptions{GitHubRelease: true},
		})
		require.NoError(t, err)
		require.Equal(t, []string{
			"npm run env",
			"git flow release finish -m Release 1.5.0 -p",
		}, f.runner.CommandLines())

		releases := mock.Releases()
		require.Len(t, releases, 1)
		require.Equal(t, "v1.5.0", releases[0].GetTagName())
		require.Equal(t, "Release 1.5.0", releases[0].GetBody())
		require.Contains(t, f.stdout.String(), "Published https://github.com/owner/repo/releases/tag/v1.5.0")
	})

	t.Run("dry run only reads the environment", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.0"))
		f.rt.Config.DryRun = true

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"npm run env"}, f.runner.CommandLines())
		require.Empty(t, f.prompter.Messages)
		out := f.stdout.String()
		require.Contains(t, out, "+ git flow release start 1.5.0")
		require.Contains(t, out, "+ git flow release finish -m Release 1.5.0 -p 1.5.0")
		require.Contains(t, out, "+ git checkout develop")
		require.Contains(t, out, "Dry run: 6 steps not executed")
	})

	t.Run("environment failure stops before any git flow call", func(t *testing.T) {
		f := newFixture(t, nil)
		f.runner.Fail("npm run env", 254)

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.ErrorContains(t, err, "failed to read package environment")
		require.Equal(t, 254, npmflowerrors.ExitCode(err))
		require.Equal(t, []string{"npm run env"}, f.runner.CommandLines())
	})

	t.Run("malformed package version", func(t *testing.T) {
		f := newFixture(t, withoutDeploy("1.x.0"))

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.ErrorIs(t, err, npmflowerrors.ErrInvalidVersion)
		require.Equal(t, []string{"npm run env"}, f.runner.CommandLines())
	})

	t.Run("missing package version", func(t *testing.T) {
		f := newFixture(t, map[string]string{"npm_package_name": "web-app"})

		err := actions.ReleaseAction(context.Background(), f.rt, actions.ReleaseOptions{})
		require.ErrorIs(t, err, npmflowerrors.ErrMissingVersion)
	})
}

func TestHotfixActions(t *testing.T) {
	t.Run("start with a name", func(t *testing.T) {
		f := newFixture(t, nil)

		err := actions.HotfixStartAction(context.Background(), f.rt, actions.HotfixStartOptions{Name: "fix-1"})
		require.NoError(t, err)
		require.Equal(t, []string{
			"git flow hotfix start fix-1",
			"npm run version patch",
		}, f.runner.CommandLines())
	})

	t.Run("start defaults to the next patch version", func(t *testing.T) {
		f := newFixture(t, withoutDeploy("1.4.0"))

		err := actions.HotfixStartAction(context.Background(), f.rt, actions.HotfixStartOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{
			"npm run env",
			"git flow hotfix start 1.4.1",
			"npm run version patch",
		}, f.runner.CommandLines())
	})

	t.Run("finish without deploy script skips deploy", func(t *testing.T) {
		f := newFixture(t, withoutDeploy("1.4.1"), "Fix crash")

		err := actions.HotfixFinishAction(context.Background(), f.rt, actions.HotfixFinishOptions{Name: "fix-1"})
		require.NoError(t, err)
		require.Equal(t, []string{
			"npm run env",
			"git flow hotfix finish -m Fix crash -p --tagname 1.4.1 fix-1",
		}, f.runner.CommandLines())
		require.Contains(t, f.stdout.String(), "Released hotfix 1.4.1")
		require.Contains(t, f.stdout.String(), `No "deploy" script in package environment, skipping deploy`)
	})

	t.Run("finish with deploy script deploys", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.1"))
		f.rt.Config.Branches = config.Branches{Production: "main", Development: "next"}

		err := actions.HotfixFinishAction(context.Background(), f.rt, actions.HotfixFinishOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{
			"npm run env",
			"git flow hotfix finish -m Hotfix 1.4.1 -p --tagname 1.4.1",
			"git checkout main",
			"npm run deploy",
			"git checkout next",
		}, f.runner.CommandLines())
	})

	t.Run("canceled prompt stops before finishing", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.1"))
		f.prompter.Err = npmflowerrors.ErrCanceled

		err := actions.HotfixFinishAction(context.Background(), f.rt, actions.HotfixFinishOptions{Name: "fix-1"})
		require.ErrorIs(t, err, npmflowerrors.ErrCanceled)
		require.Equal(t, 1, npmflowerrors.ExitCode(err))
		require.Equal(t, []string{"npm run env"}, f.runner.CommandLines())
	})

	t.Run("GitHub failure is reported after the tag exists", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.1"), "Fix crash")
		f.rt.Config.GitHub.Release = true
		mock := testhelpers.NewMockGitHubServerConfig()
		mock.ErrorStatus = 401
		mock.ErrorMessage = "Bad credentials"
		gh, owner, name := testhelpers.NewMockGitHubClient(t, mock)
		f.rt.GitHub = func(context.Context) (github.Client, error) {
			return github.NewClientFromGitHub(gh, owner, name), nil
		}

		err := actions.HotfixFinishAction(context.Background(), f.rt, actions.HotfixFinishOptions{Name: "fix-1"})
		require.ErrorContains(t, err, "hotfix: create GitHub release 1.4.1")
		require.ErrorContains(t, err, "Bad credentials")
		require.Equal(t, []string{
			"npm run env",
			"git flow hotfix finish -m Fix crash -p --tagname 1.4.1 fix-1",
		}, f.runner.CommandLines())
	})
}

func TestDeployAction(t *testing.T) {
	t.Run("deploys and returns", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.1"))

		require.NoError(t, actions.DeployAction(context.Background(), f.rt))
		require.Equal(t, []string{
			"npm run env",
			"git checkout master",
			"npm run deploy",
			"git checkout develop",
		}, f.runner.CommandLines())
	})

	t.Run("failed checkout skips deploy and return", func(t *testing.T) {
		f := newFixture(t, withDeploy("1.4.1"))
		f.runner.Fail("git checkout master", 1)

		err := actions.DeployAction(context.Background(), f.rt)
		require.Error(t, err)
		require.Equal(t, []string{"npm run env", "git checkout master"}, f.runner.CommandLines())
	})

	t.Run("custom deploy script", func(t *testing.T) {
		f := newFixture(t, map[string]string{
			"npm_package_version":        "1.0.0",
			"npm_package_scripts_ship_it": "./ship.sh",
		})
		f.rt.Config.Npm.DeployScript = "ship-it"

		require.NoError(t, actions.DeployAction(context.Background(), f.rt))
		require.Contains(t, f.runner.CommandLines(), "npm run ship-it")
	})

	t.Run("requires a deploy script", func(t *testing.T) {
		f := newFixture(t, withoutDeploy("1.4.1"))

		err := actions.DeployAction(context.Background(), f.rt)
		require.ErrorContains(t, err, `package has no "deploy" script`)
		require.Equal(t, []string{"npm run env"}, f.runner.CommandLines())
	})
}

func TestPassthroughAction(t *testing.T) {
	t.Run("forwards arguments verbatim", func(t *testing.T) {
		f := newFixture(t, nil)

		err := actions.PassthroughAction(context.Background(), f.rt, []string{"feature", "start", "login"})
		require.NoError(t, err)
		require.Len(t, f.runner.Calls, 1)
		require.Equal(t, "git", f.runner.Calls[0].Name)
		require.Equal(t, []string{"flow", "feature", "start", "login"}, f.runner.Calls[0].Args)
		require.True(t, f.runner.Calls[0].Interactive)
	})

	t.Run("propagates the exit code", func(t *testing.T) {
		f := newFixture(t, nil)
		f.runner.Fail("git flow feature finish missing", 3)

		err := actions.PassthroughAction(context.Background(), f.rt, []string{"feature", "finish", "missing"})
		require.Equal(t, 3, npmflowerrors.ExitCode(err))
	})
}

func TestNextVersionAction(t *testing.T) {
	tests := []struct {
		part     version.Part
		expected string
	}{
		{version.Major, "2.0.0"},
		{version.Minor, "1.5.0"},
		{version.Patch, "1.4.8"},
	}
	for _, tt := range tests {
		t.Run(tt.part.String(), func(t *testing.T) {
			f := newFixture(t, withoutDeploy("1.4.7"))
			next, err := actions.NextVersionAction(context.Background(), f.rt, tt.part)
			require.NoError(t, err)
			require.Equal(t, tt.expected, next)
		})
	}
}
