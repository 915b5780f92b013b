// Package runtime provides the execution context for npmflow commands.
//
// It encapsulates shared dependencies and configuration needed by actions,
// such as the command runner, logger, prompter and repository root path.
package runtime
