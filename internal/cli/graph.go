package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/render/dot"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		from     string
		to       string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Draw the family tree with Graphviz",
		Long: `Draw the family tree as DOT source, SVG or PNG. Children point at their
parents; couples are joined by a dashed line.

With --from and --to the relation between the two is resolved and both of
them, plus the shared relative it was derived from, are highlighted.`,
		Example: `  kinship graph family.json > family.dot
  kinship graph family.json --format svg -o family.svg --from Carol --to Dan`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if output != "" && !cmd.Flags().Changed("format") {
				if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
					format = ext
				}
			}
			f := dot.Format(strings.ToLower(format))
			switch f {
			case dot.FormatDOT, dot.FormatSVG, dot.FormatPNG:
			default:
				return kerrors.New(kerrors.ErrCodeUnsupported, "unsupported format %q (want dot, svg or png)", format)
			}
			if (from == "") != (to == "") {
				return kerrors.New(kerrors.ErrCodeInvalidInput, "--from and --to must be given together")
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			fam, _, err := c.loadFamily(ctx, runner, args)
			if err != nil {
				return err
			}

			opts := dot.Options{Detailed: detailed}
			if from != "" {
				rel, err := runner.Relation(ctx, fam, from, to)
				if err != nil {
					return err
				}
				opts.Highlight = rel.People()
				opts.Title = rel.Sentence()
			}

			data, err := dot.Render(ctx, dot.ToDOT(fam.Graph, opts), f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s", strings.ToUpper(string(f)))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout; format inferred from the extension)")
	cmd.Flags().StringVar(&from, "from", "", "highlight the relation from this person...")
	cmd.Flags().StringVar(&to, "to", "", "...to this person")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include genders in node labels")

	return cmd
}
