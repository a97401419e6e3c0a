package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipecheck/pkg/cache"
	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/observability"
)

const keyTypeReport = "report"

// Runner validates payloads with caching.
// Both the CLI and the HTTP server use it so that limits, edge policy and
// caching behave identically.
//
// The Runner holds no per-request state. Multiple goroutines can safely
// share one Runner.
type Runner struct {
	Validator dag.Validator
	Limits    Limits
	Cache     cache.Cache
	Keyer     cache.Keyer
	TTL       time.Duration
	Logger    *log.Logger
}

// Outcome is the result of one [Runner.Run].
type Outcome struct {
	Report   dag.Report
	Cached   bool
	Duration time.Duration
}

// NewRunner creates a runner with the given validator, cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Limits start unset and TTL starts at [cache.TTLReport]; assign the fields
// to change them.
func NewRunner(v dag.Validator, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Validator: v,
		Cache:     c,
		Keyer:     keyer,
		TTL:       cache.TTLReport,
		Logger:    logger,
	}
}

// cachedReport is the cache encoding of a [dag.Report].
type cachedReport struct {
	NodeCount int      `json:"num_nodes"`
	EdgeCount int      `json:"num_edges"`
	IsAcyclic bool     `json:"is_dag"`
	Message   string   `json:"message"`
	Cycle     []string `json:"cycle,omitempty"`
}

// Run checks p against the runner's limits and validates it.
//
// Limit violations and, under [dag.PolicyReject], undeclared edge endpoints
// are returned as *errors.Error values; everything else produces an Outcome.
// Cache failures never fail the run.
func (r *Runner) Run(ctx context.Context, p *Payload) (*Outcome, error) {
	if err := r.Limits.Check(p); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Validation()
	hooks.OnValidateStart(ctx, len(p.Nodes), len(p.Edges))

	key := r.Keyer.ReportKey(p.Hash(), cache.ReportKeyOpts{Policy: r.Validator.Policy.String()})
	if report, ok := r.lookup(ctx, key); ok {
		elapsed := time.Since(start)
		hooks.OnValidateComplete(ctx, report.NodeCount, report.EdgeCount, report.IsAcyclic, elapsed, nil)
		return &Outcome{Report: report, Cached: true, Duration: elapsed}, nil
	}

	nodes, edges := p.Graph()
	report, err := r.Validator.Check(nodes, edges)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnValidateComplete(ctx, len(nodes), len(edges), false, elapsed, err)
		return nil, errors.Wrap(errors.ErrCodeUnknownEndpoint, err, "pipeline rejected")
	}
	hooks.OnValidateComplete(ctx, len(nodes), len(edges), report.IsAcyclic, elapsed, nil)

	r.store(ctx, key, report)

	r.Logger.Debug("validated pipeline",
		"nodes", report.NodeCount,
		"edges", report.EdgeCount,
		"dag", report.IsAcyclic,
		"duration", elapsed)
	if !report.IsAcyclic {
		r.Logger.Debug("cycle found", "path", report.CycleString())
	}

	return &Outcome{Report: report, Duration: elapsed}, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (dag.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache get failed", "key", key, "error", err)
		return dag.Report{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeReport)
		return dag.Report{}, false
	}

	var c cachedReport
	if err := json.Unmarshal(data, &c); err != nil {
		// If deserialization fails, fall through to recompute
		r.Logger.Debug("discarding corrupt cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, keyTypeReport)
		return dag.Report{}, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeReport)
	return dag.Report{
		Result: dag.Result{
			NodeCount: c.NodeCount,
			EdgeCount: c.EdgeCount,
			IsAcyclic: c.IsAcyclic,
			Message:   c.Message,
		},
		Cycle: c.Cycle,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, report dag.Report) {
	data, err := json.Marshal(cachedReport{
		NodeCount: report.NodeCount,
		EdgeCount: report.EdgeCount,
		IsAcyclic: report.IsAcyclic,
		Message:   report.Message,
		Cycle:     report.Cycle,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Debug("cache set failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeReport, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
