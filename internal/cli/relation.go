package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/kinship"
)

// relationCommand creates the relation command.
func (c *CLI) relationCommand() *cobra.Command {
	var (
		asJSON  bool
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "relation [file] <name> <other>",
		Short: "Describe how one person is related to another",
		Long: `Describe how <name> is related to <other>, e.g. "Carol is Dan's sister".

The family is read from [file], or from the store when --family is given.
An unknown name is an error; two people without a shared relative are
reported as "not related".`,
		Example: `  kinship relation family.json Carol Dan
  kinship relation --explain family.json Wren Alice
  kinship --family smith relation Carol Dan`,
		Args:              cobra.RangeArgs(2, 3),
		ValidArgsFunction: c.completeNames(2),
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
			if len(names) != 2 {
				return kerrors.New(kerrors.ErrCodeInvalidInput, "expected two names, got %d", len(names))
			}

			rel, cached, err := runner.RelationWithCacheInfo(ctx, fam, names[0], names[1])
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(relationJSON{Relation: rel, Sentence: rel.Sentence()})
			}
			fmt.Fprintln(stdout, rel.Sentence())
			if explain {
				printExplanation(rel)
				printStats(fam.Graph.Len(), fam.Graph.CoupleCount(), cached)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the relation as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "show the shared relative and the paths the term was derived from")

	return cmd
}

type relationJSON struct {
	kinship.Relation
	Sentence string `json:"sentence"`
}

func printExplanation(rel kinship.Relation) {
	printNewline()
	if !rel.Related {
		printInfo("No shared relative within reach of %s and %s", rel.From, rel.To)
		return
	}
	printKeyValue("via", rel.Via)
	printKeyValue(rel.From, pathLabel(string(rel.FromPath)))
	printKeyValue(rel.To, pathLabel(string(rel.ToPath)))
	printKeyValue("key", rel.Key)
	if !rel.Known {
		printWarning("key %s is not in the relationship table", rel.Key)
	}
}

// pathLabel shows the empty path as "self".
func pathLabel(p string) string {
	if p == "" {
		return "self"
	}
	return p
}
