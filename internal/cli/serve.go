package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/config"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/metrics"
	"github.com/matzehuels/pipecheck/pkg/observability"
	"github.com/matzehuels/pipecheck/pkg/server"
)

type serveOpts struct {
	addr      string
	policy    string
	noCache   bool
	noMetrics bool
	origins   []string
}

// serveCommand creates the serve command that runs the validation API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline validation API",
		Long: `Run the HTTP API used by the pipeline editor.

POST /pipelines/parse accepts {"nodes": [...], "edges": [...]} and answers
{"num_nodes", "num_edges", "is_dag", "message"}. Results are cached by graph
content in the configured cache backend.`,
		Example: `  pipecheck serve
  pipecheck serve --addr :9000 --policy reject
  PIPECHECK_CACHE=redis PIPECHECK_REDIS_ADDR=redis:6379 pipecheck serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "edge policy: drop or reject (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().StringSliceVar(&opts.origins, "origin", nil, "extra allowed CORS origin (repeatable)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	cfg := c.settings()

	addr := cfg.Server.Addr
	if opts.addr != "" {
		if err := errors.ValidateListenAddr(opts.addr); err != nil {
			return err
		}
		addr = opts.addr
	}
	origins := cfg.Origins()
	for _, o := range opts.origins {
		o = config.NormalizeOrigin(o)
		if err := errors.ValidateOrigin(o); err != nil {
			return err
		}
		if !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}

	runner, err := c.newRunner(ctx, opts.policy, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var reg *metrics.Registry
	if !opts.noMetrics {
		reg = metrics.NewRegistry()
		observability.SetValidationHooks(reg)
		observability.SetCacheHooks(reg)
		observability.SetServerHooks(reg)
		defer observability.Reset()
	}

	srv := server.New(runner, server.Options{
		Addr:            addr,
		Origins:         origins,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Metrics:         reg,
		Logger:          c.Logger,
	})

	c.Logger.Debug("server options",
		"cache", cacheBackend(cfg.Cache.Backend, opts.noCache),
		"ttl", runner.TTL,
		"metrics", reg != nil,
	)
	return srv.Run(ctx)
}

func cacheBackend(backend string, disabled bool) string {
	if disabled {
		return "none"
	}
	return backend
}
