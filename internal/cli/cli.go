package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/buildinfo"
	"github.com/matzehuels/pipecheck/pkg/cache"
	"github.com/matzehuels/pipecheck/pkg/client"
	"github.com/matzehuels/pipecheck/pkg/config"
	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/httputil"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pipecheck"

	// cacheScope prefixes every report key. Bump it when the cached report
	// encoding changes.
	cacheScope = "v1:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pipecheck validates pipeline graphs",
		Long: `pipecheck checks that the pipelines drawn in the editor are directed acyclic
graphs. It serves the validation API used by the editor, validates pipeline
files locally or against a running server, and generates and renders test
pipelines.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the configuration once per invocation.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "policy", cfg.Validation.Policy)
	return nil
}

// settings returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// edgePolicy resolves the --policy flag, falling back to the configured
// policy when the flag is empty.
func (c *CLI) edgePolicy(flag string) (dag.EdgePolicy, error) {
	if flag == "" {
		return c.settings().Policy(), nil
	}
	return dag.ParseEdgePolicy(flag)
}

// newRunner creates a validation runner from the loaded configuration.
// policy overrides the configured edge policy when non-empty.
func (c *CLI) newRunner(ctx context.Context, policy string, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()
	p, err := c.edgePolicy(policy)
	if err != nil {
		return nil, err
	}

	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	r := pipeline.NewRunner(dag.Validator{Policy: p}, store, cache.NewScopedKeyer(nil, cacheScope), c.Logger)
	r.Limits = cfg.Limits()
	if cfg.Cache.TTL > 0 {
		r.TTL = cfg.Cache.TTL
	}
	return r, nil
}

// newCache opens the configured report cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.settings()
	if noCache {
		return cache.NewNullCache(), nil
	}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	case config.BackendFile:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// newClient creates a validation client for baseURL, falling back to the
// configured API URL. policy drives the client's local precheck.
func (c *CLI) newClient(baseURL string, policy dag.EdgePolicy) *client.Client {
	cfg := c.settings()
	if baseURL == "" {
		baseURL = cfg.Client.APIURL
	}
	return client.New(baseURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithBackoff(httputil.Backoff{
			Attempts: cfg.Client.Retries,
			Delay:    cfg.Client.RetryDelay,
			MaxDelay: httputil.DefaultBackoff.MaxDelay,
		}),
		client.WithPolicy(policy),
		client.WithLogger(c.Logger),
	)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.settings().Cache.Dir; dir != "" {
		return dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/pipecheck/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Exit Codes
// =============================================================================

// ExitError asks main to exit with Code. Err, when set, is printed first.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
