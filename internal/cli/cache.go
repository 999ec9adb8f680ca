package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/internal/config"
	"github.com/matzehuels/kinship/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached relation and connection index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings().Cache
			if cfg.Backend == config.CacheNone {
				printInfo("Cache is disabled")
				return nil
			}

			ch, err := c.newCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()

			cl, ok := ch.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", cfg.Backend)
			}
			if err := cl.Clear(ctx); err != nil {
				return err
			}

			printSuccess("Cleared the %s cache", cfg.Backend)
			printDetail("%s", cacheLocation(ch, cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings().Cache
			switch cfg.Backend {
			case config.CacheNone:
				fmt.Fprintln(stdout, "none")
				return nil
			case config.CacheRedis:
				fmt.Fprintln(stdout, cacheLocation(nil, cfg))
				return nil
			}
			dir := cfg.Dir
			if dir == "" {
				d, err := cache.DefaultDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}

// cacheLocation describes where entries of ch are kept.
func cacheLocation(ch cache.Cache, cfg config.CacheConfig) string {
	if fc, ok := ch.(*cache.FileCache); ok {
		return "Directory: " + fc.Dir()
	}
	if cfg.Backend == config.CacheRedis {
		return fmt.Sprintf("redis://%s/%d (prefix %q)", cfg.RedisAddr, cfg.RedisDB, cfg.Prefix)
	}
	return cfg.Backend
}
