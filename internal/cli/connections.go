package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
)

// connectionsCommand creates the connections command.
func (c *CLI) connectionsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "connections [file] <name>",
		Short: "List everyone reachable from a person and the shortest path there",
		Long: `List everyone reachable from <name> through parent and spouse links,
nearest first, with the shortest path to each of them.

Paths are written with P for a step to a parent and S for a step to a
spouse. At most one spouse step is taken.`,
		Example: `  kinship connections family.json Carol`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeNames(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			fam, names, err := c.loadFamily(ctx, runner, args)
			if err != nil {
				return err
			}
			if len(names) != 1 {
				return kerrors.New(kerrors.ErrCodeInvalidInput, "expected one name, got %d", len(names))
			}

			conns, err := runner.Connections(ctx, fam, names[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(conns)
			}

			rows := make([][]string, len(conns))
			genders := make([]family.Gender, len(conns))
			for i, conn := range conns {
				p, _ := fam.Graph.Person(conn.Name)
				genders[i] = p.Gender
				rows[i] = []string{
					strconv.Itoa(i),
					conn.Name,
					pathLabel(string(conn.Path)),
					strconv.Itoa(conn.Path.Len()),
				}
			}
			printTable([]string{"#", "Name", "Path", "Steps"}, rows, func(row, col int) lipgloss.Style {
				if col == 1 {
					return genderStyle(genders[row])
				}
				return lipgloss.NewStyle().Foreground(colorGray)
			})
			printDetail("%d of %d people reachable", len(conns), fam.Graph.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the connections as JSON")

	return cmd
}

func genderStyle(g family.Gender) lipgloss.Style {
	switch g {
	case family.Female:
		return styleFemale
	case family.Male:
		return styleMale
	}
	return StyleValue
}
