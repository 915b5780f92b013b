package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	// CreatedReleases stores releases that were created
	CreatedReleases []*github.RepositoryRelease
	// Authorizations records the Authorization header of every request
	Authorizations []string
	// ErrorStatus, when non-zero, is returned for every request
	ErrorStatus  int
	ErrorMessage string
	// Owner and Repo for the mock server
	Owner string
	Repo  string

	mu sync.Mutex
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner: "owner",
		Repo:  "repo",
	}
}

// Releases returns a snapshot of the created releases
func (c *MockGitHubServerConfig) Releases() []*github.RepositoryRelease {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*github.RepositoryRelease(nil), c.CreatedReleases...)
}

// NewMockGitHubServer creates an httptest server that mocks the releases endpoint
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	releasesPath := "/repos/" + config.Owner + "/" + config.Repo + "/releases"

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()
		config.Authorizations = append(config.Authorizations, r.Header.Get("Authorization"))

		if config.ErrorStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(config.ErrorStatus)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": config.ErrorMessage})
			return
		}

		if strings.TrimSuffix(r.URL.Path, "/") != releasesPath {
			http.Error(w, fmt.Sprintf("Unhandled path: %s (method: %s)", r.URL.Path, r.Method), http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var release github.RepositoryRelease
		if err := json.NewDecoder(r.Body).Decode(&release); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode request body: %v", err), http.StatusBadRequest)
			return
		}

		id := int64(len(config.CreatedReleases) + 1)
		release.ID = github.Int64(id)
		release.HTMLURL = github.String(fmt.Sprintf("https://github.com/%s/%s/releases/tag/%s", config.Owner, config.Repo, release.GetTagName()))
		config.CreatedReleases = append(config.CreatedReleases, &release)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&release)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { server.Close() })
	return server
}

// NewMockGitHubClient creates a GitHub client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}
