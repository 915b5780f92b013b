package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
	"npmflow.dev/npmflow/internal/version"
)

func TestIncrement(t *testing.T) {
	tests := []struct {
		name    string
		version string
		pos     int
		want    string
	}{
		{name: "minor resets patch", version: "1.2.3", pos: 1, want: "1.3.0"},
		{name: "major resets minor and patch", version: "0.9.9", pos: 0, want: "1.0.0"},
		{name: "patch", version: "1.4.0", pos: 2, want: "1.4.1"},
		{name: "carries past nine", version: "1.9.0", pos: 1, want: "1.10.0"},
		{name: "single component", version: "7", pos: 0, want: "8"},
		{name: "four components", version: "1.2.3.4", pos: 1, want: "1.3.0.0"},
		{name: "leading zeros before pos are kept", version: "01.2.3", pos: 2, want: "01.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := version.Increment(tt.version, tt.pos)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIncrementIsMonotonic(t *testing.T) {
	v := "1.2.3"
	for _, want := range []string{"1.2.4", "1.2.5", "1.2.6"} {
		next, err := version.Increment(v, 2)
		require.NoError(t, err)
		require.Equal(t, want, next)
		v = next
	}

	// A smaller index resets everything after it
	v, err := version.Increment(v, 0)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", v)
}

func TestIncrementRejectsInvalidComponents(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		pos       int
		index     int
		component string
	}{
		{name: "letters", version: "1.x.3", pos: 0, index: 1, component: "x"},
		{name: "pre-release suffix", version: "1.2.3-beta", pos: 1, index: 2, component: "3-beta"},
		{name: "empty component", version: "1..3", pos: 2, index: 1, component: ""},
		{name: "negative", version: "1.-2.3", pos: 0, index: 1, component: "-2"},
		{name: "empty version", version: "", pos: 0, index: 0, component: ""},
		{name: "component at the integer limit", version: "1.18446744073709551615.0", pos: 1, index: 1, component: "18446744073709551615"},
		{name: "component past the integer limit", version: "1.18446744073709551616.0", pos: 0, index: 1, component: "18446744073709551616"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := version.Increment(tt.version, tt.pos)
			require.ErrorIs(t, err, npmflowerrors.ErrInvalidVersion)

			var componentErr *npmflowerrors.InvalidVersionComponentError
			require.ErrorAs(t, err, &componentErr)
			require.Equal(t, tt.index, componentErr.Index)
			require.Equal(t, tt.component, componentErr.Component)
		})
	}
}

func TestIncrementKeepsLargeComponentsBeforePosition(t *testing.T) {
	next, err := version.Increment("18446744073709551615.2.3", 1)
	require.NoError(t, err)
	require.Equal(t, "18446744073709551615.3.0", next)
}

func TestValidate(t *testing.T) {
	require.NoError(t, version.Validate("1.2.3"))
	require.NoError(t, version.Validate("10"))

	for _, bad := range []string{"strat", "1.2.x", "", "1..2", "v1.2.3"} {
		t.Run(bad, func(t *testing.T) {
			err := version.Validate(bad)
			require.ErrorIs(t, err, npmflowerrors.ErrInvalidVersion)
		})
	}
}

func TestIncrementRejectsOutOfRangePosition(t *testing.T) {
	_, err := version.Increment("1.2.3", 3)
	require.ErrorIs(t, err, version.ErrInvalidPosition)

	_, err = version.Increment("1.2.3", -1)
	require.ErrorIs(t, err, version.ErrInvalidPosition)
}

func TestParsePart(t *testing.T) {
	for _, part := range []version.Part{version.Major, version.Minor, version.Patch} {
		parsed, err := version.ParsePart(part.String())
		require.NoError(t, err)
		require.Equal(t, part, parsed)
	}

	parsed, err := version.ParsePart(" Minor ")
	require.NoError(t, err)
	require.Equal(t, version.Minor, parsed)

	_, err = version.ParsePart("prerelease")
	require.Error(t, err)
}

func TestNext(t *testing.T) {
	next, err := version.Next("1.4.0", version.Minor)
	require.NoError(t, err)
	require.Equal(t, "1.5.0", next)
}
