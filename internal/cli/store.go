package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	kio "github.com/matzehuels/kinship/pkg/io"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/store"
)

// storeCommand creates the family store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage families kept in the store (sqlite or mongo)",
		Long: `Manage named families kept in the configured store. A stored family can
be queried with --family <name> instead of a family file.`,
	}

	cmd.AddCommand(c.storeSaveCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storeExportCommand())

	return cmd
}

// withStore opens the store, runs fn and closes the store.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// storeSaveCommand creates the "store save" subcommand.
func (c *CLI) storeSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save <name> <file>",
		Short:   "Validate a family file and save it under a name",
		Example: `  kinship store save smith family.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, path := args[0], args[1]
			if err := kerrors.ValidateFamilyName(name); err != nil {
				return err
			}

			data, err := kio.Import(path)
			if err != nil {
				return err
			}
			// Reject anything that would not load later.
			fam, err := pipeline.FromData(path, data)
			if err != nil {
				return err
			}

			return c.withStore(ctx, func(st store.Store) error {
				spin := newSpinnerWithContext(ctx, "Saving family...")
				spin.Start()
				if err := st.Save(ctx, name, data); err != nil {
					spin.Stop()
					return err
				}
				spin.StopWithSuccess("Saved family " + StyleHighlight.Render(name))
				printDetail("%d people, %d couples", fam.Graph.Len(), fam.Graph.CoupleCount())
				printNextStep("Query it", "kinship --family "+name+" relation <name> <other>")
				return nil
			})
		},
	}
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				families, err := st.List(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					if families == nil {
						families = []store.Summary{}
					}
					return printJSON(families)
				}
				if len(families) == 0 {
					printInfo("No stored families")
					return nil
				}
				rows := make([][]string, len(families))
				for i, f := range families {
					rows[i] = []string{f.Name, strconv.Itoa(f.People), f.UpdatedAt.Local().Format(time.DateTime)}
				}
				printTable([]string{"Name", "People", "Updated"}, rows, nil)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")

	return cmd
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted family %s", args[0])
				return nil
			})
		},
	}
}

// storeExportCommand creates the "store export" subcommand.
func (c *CLI) storeExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "export <name> <file>",
		Short:   "Write a stored family to a file (.json, .toml or .yaml)",
		Example: `  kinship store export smith smith.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, path := args[0], args[1]
			return c.withStore(ctx, func(st store.Store) error {
				data, err := st.Load(ctx, name)
				if err != nil {
					return err
				}
				if err := kio.Export(path, data); err != nil {
					return err
				}
				printSuccess("Exported family %s", name)
				printFile(path)
				return nil
			})
		},
	}
}
