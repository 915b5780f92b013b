// Package workflow models npmflow commands as ordered plans of typed steps.
//
// A Plan is a list of Steps: Run (external command), Prompt (one line of user
// input), Call (in-process operation) and Scoped (acquire/body/release group
// whose release always runs once acquired). A single Executor interprets a
// plan sequentially and stops at the first failure, so workflow logic can be
// tested with a fake process.Runner and Prompter instead of a terminal.
package workflow
