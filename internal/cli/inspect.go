package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command for browsing a pipeline.
func (c *CLI) inspectCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse a pipeline's nodes and cycle",
		Long: `Show every node of a pipeline with its parents and children, marking the
nodes of the first cycle found. Runs interactively on a terminal; use --plain
or redirect the output for a static table.`,
		Example: `  pipecheck inspect pipeline.json
  pipecheck inspect --plain pipeline.json | less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			model := NewInspectModel(args[0], p)

			out := cmd.OutOrStdout()
			if plain || !isTerminal(out) || args[0] == "-" {
				printInspect(out, model)
				return nil
			}

			prog := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = prog.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a static table instead of the interactive view")
	return cmd
}

// printInspect writes every row of m without paging.
func printInspect(w io.Writer, m InspectModel) {
	m.Height = max(len(m.Rows), 1)
	m.Cursor, m.Offset = -1, 0
	m.Static = true
	fmt.Fprint(w, m.View())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
