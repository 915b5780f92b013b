package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotOnBranch indicates that HEAD is detached
var ErrNotOnBranch = errors.New("HEAD is not on a branch")

// Repository wraps a go-git repository
type Repository struct {
	*gogit.Repository
	root string
}

// OpenRepository opens the git repository containing path
func OpenRepository(path string) (*Repository, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repository{
		Repository: repo,
		root:       root,
	}, nil
}

// Root returns the root directory of the working tree
func (r *Repository) Root() string {
	return r.root
}

// CurrentBranch returns the current branch name
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		// An unborn branch has a symbolic HEAD but no commit yet
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			if ref, refErr := r.Storer.Reference(plumbing.HEAD); refErr == nil && ref.Type() == plumbing.SymbolicReference {
				return ref.Target().Short(), nil
			}
		}
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", ErrNotOnBranch
	}

	return head.Name().Short(), nil
}

// FlowSettings holds what `git flow init` recorded in the repository config.
// Empty fields were not configured.
type FlowSettings struct {
	Production       string
	Development      string
	ReleasePrefix    string
	HotfixPrefix     string
	VersionTagPrefix string
}

// FlowSettings reads the gitflow.* keys of the repository config
func (r *Repository) FlowSettings() (FlowSettings, error) {
	cfg, err := r.Config()
	if err != nil {
		return FlowSettings{}, fmt.Errorf("failed to read git config: %w", err)
	}

	if !cfg.Raw.HasSection("gitflow") {
		return FlowSettings{}, nil
	}
	section := cfg.Raw.Section("gitflow")
	branch := section.Subsection("branch")
	prefix := section.Subsection("prefix")

	return FlowSettings{
		Production:       branch.Option("master"),
		Development:      branch.Option("develop"),
		ReleasePrefix:    prefix.Option("release"),
		HotfixPrefix:     prefix.Option("hotfix"),
		VersionTagPrefix: prefix.Option("versiontag"),
	}, nil
}

// RemoteURL returns the first URL of the named remote
func (r *Repository) RemoteURL(name string) (string, error) {
	remote, err := r.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 || strings.TrimSpace(urls[0]) == "" {
		return "", fmt.Errorf("remote %s has no URL", name)
	}
	return urls[0], nil
}
