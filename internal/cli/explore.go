package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [file]",
		Short: "Pick two people interactively and see how they are related",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			fam, _, err := c.loadFamily(ctx, runner, args)
			if err != nil {
				return err
			}

			model := NewExploreModel(fam.Graph.Names(), func(from, to string) (string, error) {
				rel, err := runner.Relation(ctx, fam, from, to)
				if err != nil {
					return "", err
				}
				return rel.Sentence(), nil
			})

			_, err = tea.NewProgram(model, tea.WithContext(ctx)).Run()
			return err
		},
	}
}
