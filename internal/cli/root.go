package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/internal/config"
	"github.com/matzehuels/kinship/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Kinship names how two people of a family are related",
		Long: `Kinship reads a family tree (people, their parents and their marriages) and
answers how one person is related to another, e.g. "Carol is Dan's sister".`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	flags.StringVar(&c.tablePath, "table", "", "relationship table (.toml or .json) replacing the built-in one")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the result cache")
	flags.StringVar(&c.familyName, "family", "", "use a stored family instead of a family file")

	root.AddCommand(c.relationCommand())
	root.AddCommand(c.connectionsCommand())
	root.AddCommand(c.matrixCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, applies flag overrides and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.tablePath != "" {
		cfg.Table = c.tablePath
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	c.cfg = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))

	if c.Logger.GetLevel() <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
	return nil
}
