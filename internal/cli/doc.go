// Package cli wires npmflow's cobra commands to the actions package.
//
// Arguments whose first word is not an npmflow command are forwarded to the
// branching tool unchanged, so `npmflow feature start login` behaves like
// `git flow feature start login`.
package cli
