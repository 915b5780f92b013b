// Package actions provides the workflows behind npmflow's commands.
//
// Each action reads what it needs up front (the package environment, the
// current branch), builds a workflow.Plan of typed steps and hands it to a
// single sequential executor. Actions accept a runtime.Context which provides
// the runner, configuration, prompter and logger.
package actions
