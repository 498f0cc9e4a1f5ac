package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, SourceHTTP, cfg.Source.Kind)
	assert.Equal(t, Duration(10*time.Second), cfg.Source.Timeout)
	assert.Equal(t, "en", cfg.View.Locale)
	assert.Equal(t, taxonomy.NewSet(taxonomy.Risk, taxonomy.Tool), cfg.View.Visible)
	assert.Equal(t, 4, cfg.Export.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	assert.Equal(t, "/tmp/test-xdg/gridmap", ConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "gridmap"), ConfigDir())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Source.Kind = SourceFile
	cfg.Source.Dataset = "/data/graph.yaml"
	cfg.Source.Timeout = Duration(3 * time.Second)
	cfg.View.Visible = taxonomy.NewSet(taxonomy.Skill)
	cfg.Export.Concurrency = 8
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[view]
locale = "fr-CA"
visible = "risques,outils,standards"

[log]
level = "debug"
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fr-CA", cfg.View.Locale)
	assert.Equal(t, taxonomy.NewSet(taxonomy.Risk, taxonomy.Tool, taxonomy.Standard), cfg.View.Visible)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "untouched keys keep their default")
}

func TestLoadFileRejectsUnknownLeafType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[view]\nvisible = \"risks,groups\"\n"), 0o644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, `unknown leaf type "groups"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad kind", func(c *Config) { c.Source.Kind = "ftp" }, "source.kind: must be one of [http file]"},
		{"bad url", func(c *Config) { c.Source.BaseURL = "not a url" }, "source.base_url: invalid URL"},
		{"http without url", func(c *Config) { c.Source.BaseURL = "" }, "source.base_url: required when kind is http"},
		{"file without dataset", func(c *Config) { c.Source.Kind = SourceFile }, "source.dataset: required when kind is file"},
		{"zero timeout", func(c *Config) { c.Source.Timeout = 0 }, "source.timeout: must be greater than 0"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level: must be one of"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format: must be one of"},
		{"bad addr", func(c *Config) { c.Serve.Addr = "8088" }, "serve.addr: expected host:port"},
		{"no locale", func(c *Config) { c.View.Locale = "" }, "view.locale: field is required"},
		{"concurrency", func(c *Config) { c.Export.Concurrency = 0 }, "export.concurrency: must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestEnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	require.NoError(t, EnsureExists())
	_, err := os.Stat(filepath.Join(tmpDir, "gridmap", "config.toml"))
	require.NoError(t, err)

	// second call is a no-op
	require.NoError(t, EnsureExists())
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, Duration(90*time.Second), d)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
