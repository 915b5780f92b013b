// Package npm reads the package manager's script environment and builds the
// npm commands used by release workflows.
package npm

import (
	"sort"
	"strings"

	npmflowerrors "npmflow.dev/npmflow/internal/errors"
)

// Environment keys exposed by `npm run env`
const (
	KeyVersion       = "npm_package_version"
	KeyName          = "npm_package_name"
	scriptsKeyPrefix = "npm_package_scripts_"
)

// Environment is a read-only snapshot of the script environment
type Environment struct {
	vars map[string]string
}

// NewEnvironment creates an Environment from a map, copying it
func NewEnvironment(vars map[string]string) Environment {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return Environment{vars: copied}
}

// Get returns the value of key and whether it was present
func (e Environment) Get(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Version returns npm_package_version
func (e Environment) Version() (string, error) {
	v, ok := e.vars[KeyVersion]
	if !ok || strings.TrimSpace(v) == "" {
		return "", npmflowerrors.ErrMissingVersion
	}
	return strings.TrimSpace(v), nil
}

// Name returns the package name, or "" when the environment has none
func (e Environment) Name() string {
	return e.vars[KeyName]
}

// HasScript reports whether package.json defines the named script
func (e Environment) HasScript(name string) bool {
	_, ok := e.vars[ScriptKey(name)]
	return ok
}

// Keys returns every variable name in sorted order
func (e Environment) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of variables
func (e Environment) Len() int {
	return len(e.vars)
}

// ScriptKey returns the environment variable npm sets for a script name.
// Characters outside [A-Za-z0-9_] become underscores, so "deploy:prod" maps to npm_package_scripts_deploy_prod.
func ScriptKey(name string) string {
	var b strings.Builder
	b.WriteString(scriptsKeyPrefix)
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ParseEnvironment parses newline-separated KEY=VALUE output.
//
// Blank lines and npm's "> pkg@1.0.0 env" banner lines are ignored. Each
// remaining line is split on its first '='; the last occurrence of a key wins.
// A line without '=' or with an empty key fails the whole parse when strict is
// set, and is reported through dropped otherwise.
func ParseEnvironment(output string, strict bool) (Environment, []string, error) {
	vars := make(map[string]string)
	var dropped []string

	for i, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "> ") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			if strict {
				return Environment{}, nil, npmflowerrors.NewMalformedEnvLineError(i+1, line)
			}
			dropped = append(dropped, line)
			continue
		}
		vars[key] = value
	}

	return Environment{vars: vars}, dropped, nil
}
