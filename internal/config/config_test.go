package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kinship/internal/config"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
)

var envKeys = []string{
	"KINSHIP_TABLE", "KINSHIP_CACHE", "KINSHIP_CACHE_TTL", "KINSHIP_CACHE_DIR",
	"KINSHIP_REDIS_ADDR", "KINSHIP_REDIS_PASSWORD", "KINSHIP_REDIS_DB",
	"KINSHIP_STORE", "KINSHIP_SQLITE_PATH", "KINSHIP_MONGO_URI", "KINSHIP_MONGO_DATABASE",
	"KINSHIP_ADDR", "KINSHIP_RATE_LIMIT", "KINSHIP_RATE_BURST",
}

// isolate clears every KINSHIP_* variable and points XDG_CONFIG_HOME at an
// empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "kinship", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.CacheFile, cfg.Cache.Backend)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, config.StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr,
		"Default address must be loopback only")
	assert.Empty(t, cfg.Table)
}

func TestLoad_DefaultPathFromXDG(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "kinship", "config.toml"), config.DefaultPath())
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
table = "/etc/kinship/terms.toml"

[cache]
backend = "redis"
ttl = "1h30m"
redis_addr = "localhost:6379"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"

[server]
addr = ":9090"
rate_limit = 2.5
`)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "/etc/kinship/terms.toml", cfg.Table)
	assert.Equal(t, config.CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, config.StoreMongo, cfg.Store.Backend)
	assert.Equal(t, "kinship", cfg.Store.MongoDatabase, "unset keys keep defaults")
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit, 1e-9)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "[server]\naddr = \":9090\"\n")
	t.Setenv("KINSHIP_ADDR", ":7070")
	t.Setenv("KINSHIP_CACHE", "none")
	t.Setenv("KINSHIP_CACHE_TTL", "5m")
	t.Setenv("KINSHIP_RATE_BURST", "not-a-number")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, config.CacheNone, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 40, cfg.Server.Burst, "unparsable values keep the previous setting")
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Equal(t, kerrors.ErrCodeFileNotFound, kerrors.GetCode(err))
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "[cache]\nbackend = \"file\"\ncolour = \"blue\"\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Equal(t, kerrors.ErrCodeInvalidInput, kerrors.GetCode(err))
	assert.Contains(t, err.Error(), "cache.colour")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "[cache\n")

	_, err := config.Load(path)
	assert.Equal(t, kerrors.ErrCodeInvalidFormat, kerrors.GetCode(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(*config.Config) {}, false},
		{"unknown cache", func(c *config.Config) { c.Cache.Backend = "memcached" }, true},
		{"redis without addr", func(c *config.Config) { c.Cache.Backend = config.CacheRedis }, true},
		{"redis with addr", func(c *config.Config) {
			c.Cache.Backend = config.CacheRedis
			c.Cache.RedisAddr = "localhost:6379"
		}, false},
		{"unknown store", func(c *config.Config) { c.Store.Backend = "postgres" }, true},
		{"mongo without uri", func(c *config.Config) { c.Store.Backend = config.StoreMongo }, true},
		{"negative ttl", func(c *config.Config) { c.Cache.TTL = -time.Second }, true},
		{"negative rate", func(c *config.Config) { c.Server.RateLimit = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
