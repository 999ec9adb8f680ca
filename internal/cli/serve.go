package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kinship/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		warm bool
	)

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Answer relation queries over HTTP",
		Long: `Serve the loaded family over a JSON HTTP API:

  GET /healthz
  GET /people
  GET /people/{name}
  GET /people/{name}/connections
  GET /relation?from=<name>&to=<name>
  GET /matrix[?names=a,b,c]
  GET /graph[?format=svg|dot&from=<name>&to=<name>]

The server shuts down cleanly on interrupt.`,
		Example: `  kinship serve family.json --addr :8080
  kinship --family smith serve --warm`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := c.settings().Server
			if addr == "" {
				addr = cfg.Addr
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

			srv := server.New(runner, fam, logger, server.Options{
				RateLimit: cfg.RateLimit,
				Burst:     cfg.Burst,
				Timeout:   cfg.Timeout,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.ListenAndServe(gctx, addr)
			})
			if warm {
				g.Go(func() error {
					// Fill the cache so the first /matrix is served from it.
					if _, err := runner.Matrix(gctx, fam, nil); err != nil && gctx.Err() == nil {
						logger.Warn("cache warm-up failed", "err", err)
					}
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&warm, "warm", false, "resolve every pair at startup to fill the cache")

	return cmd
}
