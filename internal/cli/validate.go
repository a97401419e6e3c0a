package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/client"
	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// ExitInvalid is the exit status of validate when a pipeline is not a DAG.
const ExitInvalid = 2

type validateOpts struct {
	remote  bool
	apiURL  string
	policy  string
	jsonOut bool
	noCache bool
}

// fileReport is the --json form of one validated file.
type fileReport struct {
	File string `json:"file"`
	pipeline.Response
	Cycle  []string `json:"cycle,omitempty"`
	Cached bool     `json:"cached"`
	Error  string   `json:"error,omitempty"`
}

func (r fileReport) valid() bool {
	return r.Error == "" && r.IsDAG
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check that pipeline files are DAGs",
		Long: `Check that each pipeline file describes a directed acyclic graph.

Files hold the editor's {"nodes": [...], "edges": [...]} JSON. Use "-" to read
from stdin. Validation runs locally unless --remote is given, in which case the
files are sent to the validation server.

The command exits with status 2 if any pipeline is not a DAG or is rejected.`,
		Example: `  pipecheck validate pipeline.json
  pipecheck validate --policy reject a.json b.json
  pipecheck generate --nodes 500 | pipecheck validate --json -
  pipecheck validate --remote --api-url http://localhost:8000 pipeline.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.remote, "remote", false, "validate against the server instead of locally")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "server URL for --remote (overrides config)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "edge policy: drop or reject (overrides config)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the report cache")

	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, paths []string, opts validateOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	prog := newProgress(c.Logger)

	check, cleanup, err := c.checker(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	reports := make([]fileReport, 0, len(paths))
	for _, path := range paths {
		p, err := readPayload(cmd, path)
		if err != nil {
			return err
		}
		r := check(ctx, path, p)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reports = append(reports, r)
		if !opts.jsonOut {
			printReport(out, r)
		}
	}

	if opts.jsonOut {
		if err := pipeline.Encode(out, reports); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Validated %d pipeline(s)", len(reports)))

	for _, r := range reports {
		if !r.valid() {
			return &ExitError{Code: ExitInvalid}
		}
	}
	return nil
}

type checkFunc func(ctx context.Context, path string, p *pipeline.Payload) fileReport

// checker returns the local or remote validation function for opts.
func (c *CLI) checker(ctx context.Context, cmd *cobra.Command, opts validateOpts) (checkFunc, func(), error) {
	if opts.remote {
		if opts.apiURL != "" {
			if err := errors.ValidateURL(opts.apiURL); err != nil {
				return nil, nil, err
			}
		}
		policy, err := c.edgePolicy(opts.policy)
		if err != nil {
			return nil, nil, err
		}
		cl := c.newClient(opts.apiURL, policy)
		quiet := opts.jsonOut
		return func(ctx context.Context, path string, p *pipeline.Payload) fileReport {
			return c.checkRemote(ctx, cmd.ErrOrStderr(), cl, path, p, quiet)
		}, func() {}, nil
	}

	runner, err := c.newRunner(ctx, opts.policy, opts.noCache)
	if err != nil {
		return nil, nil, err
	}
	return func(ctx context.Context, path string, p *pipeline.Payload) fileReport {
		o, err := runner.Run(ctx, p)
		if err != nil {
			return fileReport{File: path, Response: pipeline.Response{NumNodes: len(p.Nodes), NumEdges: len(p.Edges)}, Error: errors.UserMessage(err)}
		}
		logOutcome(c.Logger, path, o)
		return fileReport{
			File:     path,
			Response: pipeline.NewResponse(o.Report.Result),
			Cycle:    o.Report.Cycle,
			Cached:   o.Cached,
		}
	}, func() { runner.Close() }, nil
}

// checkRemote prechecks p locally and asks the server only when the local
// check cannot already tell that p is invalid.
func (c *CLI) checkRemote(ctx context.Context, stderr io.Writer, cl *client.Client, path string, p *pipeline.Payload, quiet bool) fileReport {
	local, err := cl.Precheck(p)
	if err != nil {
		return fileReport{File: path, Response: pipeline.Response{NumNodes: len(p.Nodes), NumEdges: len(p.Edges)}, Error: errors.UserMessage(err)}
	}
	if !local.IsAcyclic {
		c.Logger.Debug("cycle found locally, skipping server", "source", path)
		return fileReport{File: path, Response: pipeline.NewResponse(local.Result), Cycle: local.Cycle}
	}

	var res dag.Result
	if quiet {
		res, err = cl.Parse(ctx, p)
	} else {
		spin := newSpinner(ctx, stderr, fmt.Sprintf("Checking %s on %s", path, cl.BaseURL()))
		spin.Start()
		res, err = cl.Parse(ctx, p)
		c.Logger.Debug("validation server replied", "source", path, "elapsed", spin.Stop())
	}
	if err != nil {
		c.Logger.Warn("validation server unavailable", "url", cl.BaseURL(), "error", err)
		fb := client.Fallback(p)
		return fileReport{File: path, Response: pipeline.NewResponse(fb), Error: fb.Message}
	}
	return fileReport{File: path, Response: pipeline.NewResponse(res)}
}

// readPayload decodes path, or stdin when path is "-".
func readPayload(cmd *cobra.Command, path string) (*pipeline.Payload, error) {
	if path == "-" {
		p, err := pipeline.Decode(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return p, nil
	}
	return pipeline.ReadFile(path)
}

func printReport(w io.Writer, r fileReport) {
	switch {
	case r.Error != "":
		printError(w, "%s: %s", r.File, r.Error)
	case r.IsDAG:
		printSuccess(w, "%s: %s", r.File, r.Message)
	default:
		printError(w, "%s: %s", r.File, r.Message)
	}
	printStats(w, r.NumNodes, r.NumEdges, r.Cached)
	printCycle(w, r.Cycle)
}
