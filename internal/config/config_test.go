package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://openlibrary.org/search.json", cfg.API.SearchURL)
	assert.Equal(t, "https://openlibrary.org/works", cfg.API.WorksURL)
	assert.Equal(t, "https://covers.openlibrary.org/b/id", cfg.API.CoversURL)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.QuietPeriod)
	assert.Equal(t, 5, cfg.Search.ScrollMargin)
	assert.True(t, cfg.Dark())
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BOOKSCOUT_ENV_PATH", filepath.Join(t.TempDir(), "absent.env"))

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Search, cfg.Search)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  quiet_period: 500ms
ui:
  theme: light
data_dir: /tmp/bookscout-test
`), 0644))

	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("BOOKSCOUT_SCROLL_MARGIN=8\n"), 0644))
	t.Setenv("BOOKSCOUT_ENV_PATH", envPath)
	t.Setenv("BOOKSCOUT_QUIET_PERIOD", "750ms")
	t.Setenv("BOOKSCOUT_RPS", "1.5")
	t.Cleanup(func() { os.Unsetenv("BOOKSCOUT_SCROLL_MARGIN") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Search.QuietPeriod, "env beats file")
	assert.Equal(t, 8, cfg.Search.ScrollMargin, ".env applied")
	assert.InDelta(t, 1.5, cfg.API.RPS, 0.0001)
	assert.False(t, cfg.Dark())
	assert.Equal(t, "/tmp/bookscout-test", cfg.DataDir)
	assert.Equal(t, "/tmp/bookscout-test/bookscout.db", cfg.DBPath())
	assert.Equal(t, "/tmp/bookscout-test/bookscout.events.jsonl", cfg.EventsPath())

	// Fields absent from the file keep their defaults.
	assert.Equal(t, DefaultConfig().API.SearchURL, cfg.API.SearchURL)
}

func TestPageSizeIsNotConfigurable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  page_size: 40\n"), 0644))
	t.Setenv("BOOKSCOUT_ENV_PATH", filepath.Join(dir, "absent.env"))
	t.Setenv("BOOKSCOUT_PAGE_SIZE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Search, cfg.Search)

	out := filepath.Join(dir, "saved.yaml")
	require.NoError(t, cfg.Save(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "page_size")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvErrors(t *testing.T) {
	env := map[string]string{
		"BOOKSCOUT_SCROLL_MARGIN": "many",
		"BOOKSCOUT_QUIET_PERIOD":  "soon",
		"BOOKSCOUT_RPS":           "fast",
	}
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(func(k string) string { return env[k] })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKSCOUT_SCROLL_MARGIN")
	assert.Contains(t, err.Error(), "BOOKSCOUT_QUIET_PERIOD")
	assert.Contains(t, err.Error(), "BOOKSCOUT_RPS")
	assert.Equal(t, 5, cfg.Search.ScrollMargin)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative quiet period", func(c *Config) { c.Search.QuietPeriod = -time.Second }},
		{"zero rps", func(c *Config) { c.API.RPS = 0 }},
		{"negative margin", func(c *Config) { c.Search.ScrollMargin = -1 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "sepia" }},
		{"empty data dir", func(c *Config) { c.DataDir = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("BOOKSCOUT_ENV_PATH", filepath.Join(t.TempDir(), "absent.env"))
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Search.QuietPeriod = 450 * time.Millisecond
	cfg.UI.Theme = "light"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Search, loaded.Search)
	assert.Equal(t, cfg.UI, loaded.UI)
	assert.Equal(t, cfg.API, loaded.API)
}
