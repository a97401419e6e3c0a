package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/render"
)

// Output formats.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

type renderOpts struct {
	output   string
	format   string
	rankdir  string
	detailed bool
}

// renderCommand creates the render command that draws a pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw a pipeline as SVG, PNG or DOT",
		Long: `Draw a pipeline with Graphviz. Nodes are filled with their editor color and,
if the pipeline is not a DAG, the first cycle found is highlighted in red.

The format is taken from --format, else from the output file extension.`,
		Example: `  pipecheck render pipeline.json -o pipeline.svg
  pipecheck render pipeline.json --format dot
  pipecheck generate --nodes 20 --shape chain --cycle | pipecheck render - -o cycle.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, png or dot")
	cmd.Flags().StringVar(&opts.rankdir, "rankdir", "LR", "graph direction: LR, TB, RL or BT")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show template variables of text nodes")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{formatSVG, formatPNG, formatDOT}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	switch opts.rankdir {
	case "LR", "TB", "RL", "BT":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown rankdir %q", opts.rankdir)
	}

	p, err := readPayload(cmd, path)
	if err != nil {
		return err
	}
	nodes, edges := p.Graph()
	report := dag.Inspect(nodes, edges)
	if !report.IsAcyclic {
		c.Logger.Info("highlighting cycle", "cycle", report.CycleString())
	}

	dot := render.ToDOT(p, report.Cycle, render.Options{Detailed: opts.detailed, RankDir: opts.rankdir})

	var data []byte
	switch format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = render.RenderSVG(cmd.Context(), dot)
	case formatPNG:
		data, err = render.RenderPNG(cmd.Context(), dot)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	w := cmd.ErrOrStderr()
	printSuccess(w, "Rendered %s", strings.ToUpper(format))
	printStats(w, report.NodeCount, report.EdgeCount, false)
	printFile(w, opts.output)
	return nil
}

// outputFormat resolves the format from the flag or the output extension.
func outputFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if format == "" {
		return formatSVG, nil
	}
	switch format {
	case formatSVG, formatPNG, formatDOT:
		return format, nil
	case "gv":
		return formatDOT, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want svg, png or dot)", format)
}
