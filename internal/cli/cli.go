// Package cli implements the kinship command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/internal/config"
	"github.com/matzehuels/kinship/pkg/buildinfo"
	"github.com/matzehuels/kinship/pkg/cache"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/kinship"
	"github.com/matzehuels/kinship/pkg/pipeline"
	"github.com/matzehuels/kinship/pkg/store"
	"github.com/matzehuels/kinship/pkg/store/mongo"
	"github.com/matzehuels/kinship/pkg/store/sqlite"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kinship"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg *config.Config

	// global flags
	configPath string
	tablePath  string
	noCache    bool
	familyName string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// settings returns the effective configuration, falling back to defaults for
// commands run without setup (tests calling RunE directly).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg := c.settings()

	var table *kinship.Table
	if cfg.Table != "" {
		t, err := kinship.LoadTable(cfg.Table)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "load relationship table")
		}
		table = t
		c.Logger.Debug("using relationship table", "path", cfg.Table, "keys", t.Len())
	}

	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	// Entries written by another build may carry different semantics.
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")

	runner := pipeline.NewRunner(ch, keyer, kinship.NewResolver(table), c.Logger)
	if cfg.Cache.TTL > 0 {
		runner.TTL = cfg.Cache.TTL
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.settings().Cache
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeNetwork, err, "connect to redis at %s", cfg.RedisAddr)
		}
		logger := c.Logger
		return cache.NewBreakerCache(rc, cache.BreakerOptions{
			OnStateChange: func(from, to string) {
				logger.Warn("cache circuit breaker", "from", from, "to", to)
			},
		}), nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore opens the configured family store. The caller closes it.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.settings().Store
	switch cfg.Backend {
	case config.StoreMongo:
		c.Logger.Debug("opening store", "backend", cfg.Backend, "database", cfg.MongoDatabase)
		st, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		c.Logger.Debug("opening store", "backend", config.StoreSQLite, "path", cfg.SQLitePath)
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}

// =============================================================================
// Family Source
// =============================================================================

// loadFamily loads the family named by --family, or else the family file
// given as the first argument. It returns the remaining arguments.
func (c *CLI) loadFamily(ctx context.Context, runner *pipeline.Runner, args []string) (*pipeline.Family, []string, error) {
	if c.familyName != "" {
		st, err := c.openStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		defer st.Close()
		fam, err := runner.Load(ctx, pipeline.LoadOptions{Name: c.familyName, Store: st})
		return fam, args, err
	}
	if len(args) == 0 {
		return nil, nil, kerrors.New(kerrors.ErrCodeInvalidInput, "a family file is required (or --family <name>)")
	}
	fam, err := runner.Load(ctx, pipeline.LoadOptions{Path: args[0]})
	return fam, args[1:], err
}
