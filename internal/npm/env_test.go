package npm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
	"npmflow.dev/npmflow/internal/npm"
)

func TestParseEnvironment(t *testing.T) {
	t.Run("parses key value lines", func(t *testing.T) {
		env, dropped, err := npm.ParseEnvironment("A=1\nB=2\n", true)
		require.NoError(t, err)
		require.Empty(t, dropped)
		require.Equal(t, []string{"A", "B"}, env.Keys())

		a, ok := env.Get("A")
		require.True(t, ok)
		require.Equal(t, "1", a)
		b, _ := env.Get("B")
		require.Equal(t, "2", b)
	})

	t.Run("splits on the first equals sign only", func(t *testing.T) {
		env, _, err := npm.ParseEnvironment("NODE_OPTIONS=--max-old-space-size=4096\nEMPTY=\n", true)
		require.NoError(t, err)

		v, _ := env.Get("NODE_OPTIONS")
		require.Equal(t, "--max-old-space-size=4096", v)
		empty, ok := env.Get("EMPTY")
		require.True(t, ok)
		require.Equal(t, "", empty)
	})

	t.Run("last duplicate wins", func(t *testing.T) {
		env, _, err := npm.ParseEnvironment("A=1\nA=2\n", true)
		require.NoError(t, err)
		v, _ := env.Get("A")
		require.Equal(t, "2", v)
		require.Equal(t, 1, env.Len())
	})

	t.Run("ignores npm banner, blank lines and carriage returns", func(t *testing.T) {
		output := "\r\n> demo-app@1.4.0 env\r\n> env\r\n\r\nnpm_package_version=1.4.0\r\n"
		env, _, err := npm.ParseEnvironment(output, true)
		require.NoError(t, err)
		require.Equal(t, []string{"npm_package_version"}, env.Keys())

		v, err := env.Version()
		require.NoError(t, err)
		require.Equal(t, "1.4.0", v)
	})

	t.Run("strict mode rejects lines without equals", func(t *testing.T) {
		_, _, err := npm.ParseEnvironment("A=1\nnot a variable\nB=2\n", true)
		require.ErrorIs(t, err, npmflowerrors.ErrMalformedEnv)

		var lineErr *npmflowerrors.MalformedEnvLineError
		require.ErrorAs(t, err, &lineErr)
		require.Equal(t, 2, lineErr.Line)
		require.Equal(t, "not a variable", lineErr.Text)
	})

	t.Run("strict mode rejects empty keys", func(t *testing.T) {
		_, _, err := npm.ParseEnvironment("=orphan\n", true)
		require.ErrorIs(t, err, npmflowerrors.ErrMalformedEnv)
	})

	t.Run("lenient mode drops malformed lines", func(t *testing.T) {
		env, dropped, err := npm.ParseEnvironment("A=1\n  continuation of A\n=orphan\nB=2\n", false)
		require.NoError(t, err)
		require.Equal(t, []string{"  continuation of A", "=orphan"}, dropped)
		require.Equal(t, []string{"A", "B"}, env.Keys())
	})
}

func TestEnvironmentAccessors(t *testing.T) {
	t.Run("missing version", func(t *testing.T) {
		env := npm.NewEnvironment(map[string]string{"npm_package_name": "demo"})
		_, err := env.Version()
		require.ErrorIs(t, err, npmflowerrors.ErrMissingVersion)
		require.Equal(t, "demo", env.Name())
	})

	t.Run("blank version counts as missing", func(t *testing.T) {
		env := npm.NewEnvironment(map[string]string{npm.KeyVersion: "  "})
		_, err := env.Version()
		require.ErrorIs(t, err, npmflowerrors.ErrMissingVersion)
	})

	t.Run("has script", func(t *testing.T) {
		env := npm.NewEnvironment(map[string]string{
			"npm_package_scripts_deploy":      "firebase deploy",
			"npm_package_scripts_deploy_prod": "firebase deploy -P prod",
		})
		require.True(t, env.HasScript("deploy"))
		require.True(t, env.HasScript("deploy:prod"))
		require.False(t, env.HasScript("test"))
	})

	t.Run("copies its input", func(t *testing.T) {
		vars := map[string]string{"A": "1"}
		env := npm.NewEnvironment(vars)
		vars["A"] = "changed"
		v, _ := env.Get("A")
		require.Equal(t, "1", v)
	})
}

func TestScriptKey(t *testing.T) {
	require.Equal(t, "npm_package_scripts_deploy", npm.ScriptKey("deploy"))
	require.Equal(t, "npm_package_scripts_deploy_prod", npm.ScriptKey("deploy:prod"))
	require.Equal(t, "npm_package_scripts_build_web_app", npm.ScriptKey("build-web.app"))
}
