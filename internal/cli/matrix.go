package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// matrixCommand creates the matrix command.
func (c *CLI) matrixCommand() *cobra.Command {
	var (
		asJSON      bool
		parallelism int
	)

	cmd := &cobra.Command{
		Use:   "matrix <file> [names...]",
		Short: "Tabulate how every person is related to every other",
		Long: `Resolve every ordered pair of the given people (everyone if none are
given). The cell in row A, column B reads "A is B's <term>".`,
		Example: `  kinship matrix family.json
  kinship matrix family.json Alice Bob Carol`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			if parallelism > 0 {
				runner.Parallelism = parallelism
			}

			fam, names, err := c.loadFamily(ctx, runner, args)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger, "Resolved", "pairs")
			spin := newSpinnerWithContext(ctx, "Resolving relations...")
			spin.Start()
			m, err := runner.Matrix(ctx, fam, names)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(len(m.Names) * len(m.Names))

			if asJSON {
				return printJSON(m)
			}

			headers := append([]string{""}, m.Names...)
			rows := make([][]string, len(m.Names))
			for i, from := range m.Names {
				row := make([]string, 0, len(m.Names)+1)
				row = append(row, from)
				for _, cell := range m.Relations[i] {
					term := "-"
					if cell.Related {
						term = cell.Term
					}
					row = append(row, term)
				}
				rows[i] = row
			}
			printTable(headers, rows, func(row, col int) lipgloss.Style {
				switch {
				case col == 0:
					return StyleHighlight
				case col-1 == row:
					return StyleDim
				case !m.Relations[row][col-1].Related:
					return StyleDim
				}
				return StyleValue
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the matrix as JSON")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "pairs resolved concurrently (default 8)")

	return cmd
}
