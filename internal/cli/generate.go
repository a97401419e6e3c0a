package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
	"github.com/matzehuels/pipecheck/pkg/stress"
)

// Generated pipeline shapes.
const (
	shapeGrid  = "grid"
	shapeChain = "chain"
)

type generateOpts struct {
	nodes  int
	shape  string
	cycle  bool
	output string
}

// generateCommand creates the generate command for stress-test pipelines.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic pipeline for load testing",
		Long: `Generate a pipeline with the given number of nodes laid out on a grid.

Shapes:
  grid   each row of the grid is chained left to right (the editor's stress test)
  chain  every node is joined into one long path

--cycle adds an edge from the last node back to the first, which closes a
cycle for the chain shape.`,
		Example: `  pipecheck generate --nodes 100 -o stress.json
  pipecheck generate --nodes 10000 --shape chain --cycle | pipecheck validate -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := generate(opts)
			if err != nil {
				return err
			}
			if opts.output == "" {
				return pipeline.Encode(cmd.OutOrStdout(), p)
			}
			if err := pipeline.WriteFile(opts.output, p); err != nil {
				return err
			}
			w := cmd.ErrOrStderr()
			printSuccess(w, "Generated %s pipeline", opts.shape)
			printStats(w, len(p.Nodes), len(p.Edges), false)
			printFile(w, opts.output)
			printNextStep(w, "Validate it", fmt.Sprintf("%s validate %s", appName, opts.output))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.nodes, "nodes", "n", 100, "number of nodes")
	cmd.Flags().StringVar(&opts.shape, "shape", shapeGrid, "pipeline shape: grid or chain")
	cmd.Flags().BoolVar(&opts.cycle, "cycle", false, "add a back edge from the last node to the first")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	_ = cmd.RegisterFlagCompletionFunc("shape", cobra.FixedCompletions([]string{shapeGrid, shapeChain}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func generate(opts generateOpts) (*pipeline.Payload, error) {
	if opts.nodes < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--nodes must not be negative, got %d", opts.nodes)
	}

	var p *pipeline.Payload
	switch opts.shape {
	case shapeGrid:
		p = stress.Grid(opts.nodes)
	case shapeChain:
		p = stress.Chain(opts.nodes)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown shape %q (want grid or chain)", opts.shape)
	}
	if opts.cycle {
		p = stress.WithBackEdge(p)
	}
	return p, nil
}
