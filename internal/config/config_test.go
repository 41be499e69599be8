package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates tests from any .env file in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, ".cache", cfg.CacheDir)
	assert.Equal(t, "data/prnewswire.db", cfg.StorePath)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, "@every 30m", cfg.Schedule)
	assert.Empty(t, cfg.PublishersFile)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "harvester.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feed_url: https://example.com/feed.xml
cache_dir: /tmp/harvest-cache
http_timeout: 3s
timezone: America/New_York
schedule: "*/10 * * * *"
`), 0o600))
	t.Setenv("HARVESTER_STORE_PATH", "/var/lib/harvester.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed.xml", cfg.FeedURL)
	assert.Equal(t, "/tmp/harvest-cache", cfg.CacheDir)
	assert.Equal(t, "/var/lib/harvester.db", cfg.StorePath)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HARVESTER_PUBLISHERS_FILE=publishers.yaml\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HARVESTER_PUBLISHERS_FILE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "publishers.yaml", cfg.PublishersFile)
}

func TestLoadEnvOverridesDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HARVESTER_CACHE_DIR=from-dotenv\n"), 0o600))
	t.Setenv("HARVESTER_CACHE_DIR", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.CacheDir)
}

func TestLoadMissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		FeedURL:     DefaultFeedURL,
		CacheDir:    ".cache",
		StorePath:   "db",
		HTTPTimeout: time.Second,
		Schedule:    "@hourly",
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Config){
		"relative feed":  func(c *Config) { c.FeedURL = "/rss" },
		"ftp feed":       func(c *Config) { c.FeedURL = "ftp://example.com/rss" },
		"no cache dir":   func(c *Config) { c.CacheDir = "" },
		"no store":       func(c *Config) { c.StorePath = "" },
		"zero timeout":   func(c *Config) { c.HTTPTimeout = 0 },
		"negative gap":   func(c *Config) { c.RequestInterval = -time.Second },
		"bad timezone":   func(c *Config) { c.Timezone = "Mars/Olympus" },
		"bad schedule":   func(c *Config) { c.Schedule = "every now and then" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
