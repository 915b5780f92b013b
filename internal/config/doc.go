// Package config resolves npmflow settings.
//
// It handles:
//   - Built-in defaults for a standard git-flow layout
//   - Values recorded by `git flow init` in the repository config
//   - The repository's .npmflow.yml file
//   - NPMFLOW_* environment overrides
package config
