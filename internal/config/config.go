// Package config loads kinship settings.
//
// Settings are layered: built-in defaults, then the TOML file
// ($XDG_CONFIG_HOME/kinship/config.toml unless --config says otherwise),
// then KINSHIP_* environment variables. Command line flags are applied last
// by the CLI itself.
//
// Example file:
//
//	table = "~/kin/terms.toml"
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "sqlite"
//	sqlite_path = "/var/lib/kinship/families.db"
//
//	[server]
//	addr = ":8080"
//	rate_limit = 20
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
)

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config holds every setting of the CLI and server.
type Config struct {
	// Table is a custom relationship table (.toml or .json). Empty means the
	// built-in table.
	Table string `toml:"table"`

	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"` // file, redis or none (default: file)
	TTL           time.Duration `toml:"ttl"`     // default: 168h
	Dir           string        `toml:"dir"`     // file backend root (default: user cache dir)
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"` // redis key prefix (default: kinship:)
}

// StoreConfig selects and configures the family store.
type StoreConfig struct {
	Backend       string `toml:"backend"` // sqlite or mongo (default: sqlite)
	SQLitePath    string `toml:"sqlite_path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"` // default: kinship
}

// ServerConfig configures `kinship serve`.
type ServerConfig struct {
	Addr      string        `toml:"addr"`       // default: 127.0.0.1:8080
	RateLimit float64       `toml:"rate_limit"` // requests per second per client, 0 disables
	Burst     int           `toml:"burst"`
	Timeout   time.Duration `toml:"timeout"` // per request (default: 10s)
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     7 * 24 * time.Hour,
			Prefix:  "kinship:",
		},
		Store: StoreConfig{
			Backend:       StoreSQLite,
			SQLitePath:    filepath.Join(dataDir(), "families.db"),
			MongoDatabase: "kinship",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			RateLimit: 20,
			Burst:     40,
			Timeout:   10 * time.Second,
		},
	}
}

// DefaultPath is where Load looks when no file is given.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if d, err := os.UserConfigDir(); err == nil {
			dir = d
		}
	}
	return filepath.Join(dir, "kinship", "config.toml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "kinship")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "kinship")
	}
	return "."
}

// Load builds the effective configuration. An empty path reads DefaultPath
// if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.readFile(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return err
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return kerrors.New(kerrors.ErrCodeInvalidInput, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	c.Table = expandHome(c.Table)
	c.Cache.Dir = expandHome(c.Cache.Dir)
	c.Store.SQLitePath = expandHome(c.Store.SQLitePath)
	return nil
}

func (c *Config) applyEnv() {
	c.Table = getEnv("KINSHIP_TABLE", c.Table)

	c.Cache.Backend = getEnv("KINSHIP_CACHE", c.Cache.Backend)
	c.Cache.TTL = getEnvDuration("KINSHIP_CACHE_TTL", c.Cache.TTL)
	c.Cache.Dir = getEnv("KINSHIP_CACHE_DIR", c.Cache.Dir)
	c.Cache.RedisAddr = getEnv("KINSHIP_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("KINSHIP_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("KINSHIP_REDIS_DB", c.Cache.RedisDB)

	c.Store.Backend = getEnv("KINSHIP_STORE", c.Store.Backend)
	c.Store.SQLitePath = getEnv("KINSHIP_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.MongoURI = getEnv("KINSHIP_MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDatabase = getEnv("KINSHIP_MONGO_DATABASE", c.Store.MongoDatabase)

	c.Server.Addr = getEnv("KINSHIP_ADDR", c.Server.Addr)
	c.Server.RateLimit = getEnvFloat("KINSHIP_RATE_LIMIT", c.Server.RateLimit)
	c.Server.Burst = getEnvInt("KINSHIP_RATE_BURST", c.Server.Burst)
}

// Validate checks backend names and the settings each backend requires.
func (c *Config) Validate() error {
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "cache backend redis needs redis_addr")
	}
	if !slices.Contains([]string{StoreSQLite, StoreMongo}, c.Store.Backend) {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "unknown store backend %q (want sqlite or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && c.Store.MongoURI == "" {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "store backend mongo needs mongo_uri")
	}
	if c.Cache.TTL < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidInput, "rate limit and burst must not be negative")
	}
	if c.Table != "" {
		if err := kerrors.ValidatePath(c.Table); err != nil {
			return fmt.Errorf("table: %w", err)
		}
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt and friends keep the fallback when the variable does not parse.
func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
