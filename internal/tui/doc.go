// Package tui provides the terminal interface for npmflow.
//
// It handles:
//   - Structured logging to the console and a rotating log file (Splog)
//   - The tag message prompt (survey on a terminal, plain lines otherwise)
//   - Step progress reporting and terminal styling (using lipgloss)
package tui
