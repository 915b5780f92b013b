package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"npmflow.dev/npmflow/internal/git"
)

// FileName is the repository-level configuration file
const FileName = ".npmflow.yml"

// Environment overrides
const (
	EnvDryRun         = "NPMFLOW_DRY_RUN"
	EnvCommandTimeout = "NPMFLOW_COMMAND_TIMEOUT"
	EnvNoPrompt       = "NPMFLOW_NO_PROMPT"
)

// Config is the effective npmflow configuration
type Config struct {
	Branches       Branches      `yaml:"branches"`
	Flow           Flow          `yaml:"flow"`
	Npm            Npm           `yaml:"npm"`
	GitHub         GitHub        `yaml:"github"`
	Prompt         bool          `yaml:"prompt"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	DryRun         bool          `yaml:"dry_run"`
}

// Branches names the long-lived git-flow branches
type Branches struct {
	Production  string `yaml:"production"`
	Development string `yaml:"development"`
}

// Flow configures the branching tool
type Flow struct {
	Command          string `yaml:"command"`
	Push             bool   `yaml:"push"`
	ReleasePrefix    string `yaml:"release_prefix"`
	HotfixPrefix     string `yaml:"hotfix_prefix"`
	VersionTagPrefix string `yaml:"version_tag_prefix"`
}

// Npm configures the package manager invocations
type Npm struct {
	Command       string `yaml:"command"`
	VersionScript string `yaml:"version_script"`
	DeployScript  string `yaml:"deploy_script"`
	StrictEnv     bool   `yaml:"strict_env"`
}

// GitHub configures release publishing
type GitHub struct {
	Release bool   `yaml:"release"`
	Remote  string `yaml:"remote"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Branches: Branches{
			Production:  "master",
			Development: "develop",
		},
		Flow: Flow{
			Command:       "git flow",
			Push:          true,
			ReleasePrefix: "release/",
			HotfixPrefix:  "hotfix/",
		},
		Npm: Npm{
			Command:       "npm",
			VersionScript: "version",
			DeployScript:  "deploy",
			StrictEnv:     true,
		},
		GitHub: GitHub{
			Remote: "origin",
		},
		Prompt: true,
	}
}

// Load builds the effective configuration for the repository at repoRoot.
// Later sources override earlier ones: defaults, git-flow settings from the
// repository config, .npmflow.yml, then environment variables.
func Load(repoRoot string, settings git.FlowSettings) (Config, error) {
	cfg := Default()
	cfg.ApplyFlowSettings(settings)

	if repoRoot != "" {
		path := filepath.Join(repoRoot, FileName)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.decode(data); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyFlowSettings copies the values `git flow init` recorded
func (c *Config) ApplyFlowSettings(s git.FlowSettings) {
	if s.Production != "" {
		c.Branches.Production = s.Production
	}
	if s.Development != "" {
		c.Branches.Development = s.Development
	}
	if s.ReleasePrefix != "" {
		c.Flow.ReleasePrefix = s.ReleasePrefix
	}
	if s.HotfixPrefix != "" {
		c.Flow.HotfixPrefix = s.HotfixPrefix
	}
	if s.VersionTagPrefix != "" {
		c.Flow.VersionTagPrefix = s.VersionTagPrefix
	}
}

// decode overlays a YAML document on c. Keys not present keep their value.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDryRun); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDryRun, v, err)
		}
		c.DryRun = b
	}
	if v, ok := lookup(EnvCommandTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCommandTimeout, v, err)
		}
		c.CommandTimeout = d
	}
	if v, ok := lookup(EnvNoPrompt); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvNoPrompt, v, err)
		}
		c.Prompt = !b
	}
	return nil
}

// Validate reports the first inconsistent setting
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Branches.Production) == "":
		return fmt.Errorf("invalid config: branches.production must not be empty")
	case strings.TrimSpace(c.Branches.Development) == "":
		return fmt.Errorf("invalid config: branches.development must not be empty")
	case c.Branches.Production == c.Branches.Development:
		return fmt.Errorf("invalid config: production and development branches are both %q", c.Branches.Production)
	case strings.TrimSpace(c.Flow.Command) == "":
		return fmt.Errorf("invalid config: flow.command must not be empty")
	case strings.TrimSpace(c.Npm.Command) == "":
		return fmt.Errorf("invalid config: npm.command must not be empty")
	case strings.TrimSpace(c.Npm.DeployScript) == "":
		return fmt.Errorf("invalid config: npm.deploy_script must not be empty")
	case c.CommandTimeout < 0:
		return fmt.Errorf("invalid config: command_timeout must not be negative")
	}
	return nil
}

// YAML renders the configuration in .npmflow.yml form
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
