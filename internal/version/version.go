// Package version increments dot-separated numeric version strings.
//
// Incrementing a component resets every component after it to zero, so
// "1.2.3" bumped at the minor position becomes "1.3.0".
package version

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
)

// ErrInvalidPosition is returned when the component index is outside the version
var ErrInvalidPosition = errors.New("version component position out of range")

// Part names a component position of a major.minor.patch version
type Part int

const (
	Major Part = iota
	Minor
	Patch
)

// String returns the npm bump keyword for the part
func (p Part) String() string {
	switch p {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return fmt.Sprintf("part(%d)", int(p))
	}
}

// ParsePart converts a bump keyword into a Part
func ParsePart(s string) (Part, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	default:
		return 0, fmt.Errorf("unknown version part %q: must be major, minor or patch", s)
	}
}

// Increment returns version with the component at pos incremented by one.
// Components before pos are copied unchanged and components after pos are reset to 0.
// Every component must be a non-negative integer.
func Increment(version string, pos int) (string, error) {
	components := strings.Split(version, ".")
	if pos < 0 || pos >= len(components) {
		return "", fmt.Errorf("%w: %d for %q", ErrInvalidPosition, pos, version)
	}

	result := make([]string, len(components))
	for i, component := range components {
		n, err := parseComponent(component)
		if err != nil || (i == pos && n == math.MaxUint64) {
			return "", npmflowerrors.NewInvalidVersionComponentError(version, i, component)
		}

		switch {
		case i < pos:
			result[i] = component
		case i == pos:
			result[i] = strconv.FormatUint(n+1, 10)
		default:
			result[i] = "0"
		}
	}

	return strings.Join(result, "."), nil
}

// Validate checks that every component of version is a non-negative integer
func Validate(version string) error {
	for i, component := range strings.Split(version, ".") {
		if _, err := parseComponent(component); err != nil {
			return npmflowerrors.NewInvalidVersionComponentError(version, i, component)
		}
	}
	return nil
}

// Next increments the given part of version
func Next(version string, part Part) (string, error) {
	return Increment(version, int(part))
}

// parseComponent accepts only plain decimal digits, rejecting signs, spaces and pre-release suffixes
func parseComponent(component string) (uint64, error) {
	if component == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range component {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(component, 10, 64)
}
