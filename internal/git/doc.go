// Package git reads repository state through go-git and builds the git and
// git-flow commands run by npmflow workflows.
package git
