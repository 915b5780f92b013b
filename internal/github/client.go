// Package github publishes GitHub releases for finished release and hotfix branches.
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// ReleaseInfo contains information about a published release.
// This is a simplified struct to avoid coupling callers to go-github.
type ReleaseInfo struct {
	ID         int64
	TagName    string
	Name       string
	HTMLURL    string
	Draft      bool
	Prerelease bool
}

// CreateReleaseOptions describes a release to create for an existing tag
type CreateReleaseOptions struct {
	TagName    string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
}

// Client is an interface for GitHub API interactions
type Client interface {
	// CreateRelease publishes a release for a tag that was already pushed
	CreateRelease(ctx context.Context, opts CreateReleaseOptions) (*ReleaseInfo, error)

	// GetOwnerRepo returns the repository owner and name
	GetOwnerRepo() (owner, repo string)
}

// RealClient implements Client using the GitHub REST API
type RealClient struct {
	client *github.Client
	owner  string
	repo   string
}

// NewClient creates a client for the repository described by info, authenticated with token
func NewClient(ctx context.Context, info *RepoInfo, token string) (*RealClient, error) {
	client, err := createGitHubClient(ctx, info.Hostname, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return NewClientFromGitHub(client, info.Owner, info.Repo), nil
}

// NewClientFromGitHub wraps an already configured go-github client
func NewClientFromGitHub(client *github.Client, owner, repo string) *RealClient {
	return &RealClient{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

// GetOwnerRepo returns the repository owner and name
func (c *RealClient) GetOwnerRepo() (string, string) {
	return c.owner, c.repo
}

// CreateRelease publishes a release for opts.TagName
func (c *RealClient) CreateRelease(ctx context.Context, opts CreateReleaseOptions) (*ReleaseInfo, error) {
	release := &github.RepositoryRelease{
		TagName:    github.String(opts.TagName),
		Draft:      github.Bool(opts.Draft),
		Prerelease: github.Bool(opts.Prerelease),
	}
	name := opts.Name
	if name == "" {
		name = opts.TagName
	}
	release.Name = github.String(name)
	if opts.Body != "" {
		release.Body = github.String(opts.Body)
	}

	created, _, err := c.client.Repositories.CreateRelease(ctx, c.owner, c.repo, release)
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s in %s/%s: %w", opts.TagName, c.owner, c.repo, err)
	}

	return toReleaseInfo(created), nil
}

func toReleaseInfo(r *github.RepositoryRelease) *ReleaseInfo {
	return &ReleaseInfo{
		ID:         r.GetID(),
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		HTMLURL:    r.GetHTMLURL(),
		Draft:      r.GetDraft(),
		Prerelease: r.GetPrerelease(),
	}
}

// createGitHubClient creates a GitHub client configured for the given hostname.
// Supports both github.com and GitHub Enterprise instances.
func createGitHubClient(ctx context.Context, hostname, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if hostname != "github.com" {
		// GitHub Enterprise serves the REST API under /api/v3/
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
		}

		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}

	return client, nil
}
