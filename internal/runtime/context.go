package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"npmflow.dev/npmflow/internal/config"
	"npmflow.dev/npmflow/internal/git"
	"npmflow.dev/npmflow/internal/github"
	"npmflow.dev/npmflow/internal/npm"
	"npmflow.dev/npmflow/internal/process"
	"npmflow.dev/npmflow/internal/tui"
	"npmflow.dev/npmflow/internal/workflow"
)

// ErrNoRepository is returned by operations that need a git repository when none was found
var ErrNoRepository = errors.New("not a git repository")

// GitHubFactory creates the client used to publish releases
type GitHubFactory func(ctx context.Context) (github.Client, error)

// Context provides the shared dependencies of a single npmflow invocation
type Context struct {
	Config   config.Config
	Splog    *tui.Splog
	Runner   process.Runner
	Prompter workflow.Prompter
	Reporter workflow.Reporter
	// Repo is nil when npmflow runs outside a git repository
	Repo     *git.Repository
	RepoRoot string
	// GitHub overrides how the release client is created
	GitHub GitHubFactory

	env *npm.Environment
}

// NewContext creates a context with the given configuration and runner.
// Prompts fall back to their defaults and progress is not reported.
func NewContext(cfg config.Config, splog *tui.Splog, runner process.Runner) *Context {
	return &Context{
		Config:   cfg,
		Splog:    splog,
		Runner:   runner,
		Reporter: workflow.NopReporter{},
	}
}

// Options configures Build
type Options struct {
	// Dir is where npmflow was started; defaults to the current directory
	Dir    string
	Debug  bool
	DryRun bool
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Build assembles the context for a CLI invocation: it opens the repository,
// loads the configuration and wires the logger, runner, prompter and reporter.
func Build(opts Options) (*Context, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
		Debug:   opts.Debug || os.Getenv("DEBUG") != "",
		LogFile: tui.GetLogFilePath(),
	})
	if err != nil {
		// A missing log directory must not block the workflow
		splog, _ = tui.NewSplogWithOptions(tui.SplogOptions{
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
			Debug:  opts.Debug || os.Getenv("DEBUG") != "",
		})
		splog.Debug("File logging disabled: %v", err)
	}

	repoRoot := dir
	var settings git.FlowSettings
	repo, err := git.OpenRepository(dir)
	if err != nil {
		splog.Debug("No git repository at %s: %v", dir, err)
		repo = nil
	} else {
		repoRoot = repo.Root()
		if settings, err = repo.FlowSettings(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(repoRoot, settings)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		cfg.DryRun = true
	}

	runner := process.NewCommandRunner(
		process.WithWorkingDir(dir),
		process.WithStdio(opts.Stdin, opts.Stdout, opts.Stderr),
		process.WithTimeout(cfg.CommandTimeout),
	)

	ctx := NewContext(cfg, splog, &loggedRunner{Runner: runner, splog: splog})
	ctx.Repo = repo
	ctx.RepoRoot = repoRoot
	ctx.Prompter = tui.NewPrompter(opts.Stdin, opts.Stderr)
	ctx.Reporter = tui.NewStepReporter(splog)
	return ctx, nil
}

// NewExecutor creates a workflow executor honoring the dry-run setting
func (c *Context) NewExecutor() *workflow.Executor {
	return workflow.NewExecutor(c.Runner,
		workflow.WithPrompter(c.Prompter),
		workflow.WithReporter(c.Reporter),
		workflow.WithDryRun(c.Config.DryRun),
	)
}

// Npm returns the npm client for the configured commands
func (c *Context) Npm() *npm.Client {
	return &npm.Client{
		Command:       c.Config.Npm.Command,
		VersionScript: c.Config.Npm.VersionScript,
		DeployScript:  c.Config.Npm.DeployScript,
		StrictEnv:     c.Config.Npm.StrictEnv,
		Debugf:        c.Splog.Debug,
	}
}

// Flow returns the git-flow command builder
func (c *Context) Flow() git.Flow {
	return git.Flow{
		Command: c.Config.Flow.Command,
		Push:    c.Config.Flow.Push,
	}
}

// PackageEnv reads the package environment once per invocation
func (c *Context) PackageEnv(ctx context.Context) (npm.Environment, error) {
	if c.env != nil {
		return *c.env, nil
	}
	env, err := c.Npm().ReadEnvironment(ctx, c.Runner)
	if err != nil {
		return npm.Environment{}, err
	}
	c.env = &env
	c.Splog.Debug("Read environment of package %q (%d variables)", env.Name(), env.Len())
	return env, nil
}

// CurrentBranch returns the checked out branch
func (c *Context) CurrentBranch() (string, error) {
	if c.Repo == nil {
		return "", ErrNoRepository
	}
	return c.Repo.CurrentBranch()
}

// GitHubClient creates the client for the configured remote
func (c *Context) GitHubClient(ctx context.Context) (github.Client, error) {
	if c.GitHub != nil {
		return c.GitHub(ctx)
	}
	if c.Repo == nil {
		return nil, ErrNoRepository
	}
	remoteURL, err := c.Repo.RemoteURL(c.Config.GitHub.Remote)
	if err != nil {
		return nil, err
	}
	return github.NewClientForRemote(ctx, remoteURL, c.Runner)
}

// Close releases the log file
func (c *Context) Close() error {
	if c.Splog == nil {
		return nil
	}
	return c.Splog.Close()
}

// loggedRunner logs captured commands at debug level. Interactive commands
// are workflow steps and are logged by the step reporter.
type loggedRunner struct {
	process.Runner
	splog *tui.Splog
}

func (r *loggedRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	start := time.Now()
	out, err := r.Runner.Output(ctx, name, args...)
	cmdline := process.CommandLine(name, args...)
	if err != nil {
		r.splog.Debug("%s failed after %s: %v", cmdline, time.Since(start).Round(time.Millisecond), err)
		return out, err
	}
	r.splog.Debug("%s (%s)", cmdline, time.Since(start).Round(time.Millisecond))
	return out, nil
}

type contextKey struct{}

// WithContext stores c in ctx
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the runtime context stored in ctx, or nil
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}
