package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadConfigFromYAML is a helper to load config from YAML string.
func loadConfigFromYAML(t *testing.T, yaml string) Config {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(yaml), 0644)
	require.NoError(t, err)

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	err = v.ReadInConfig()
	require.NoError(t, err)

	var cfg Config
	err = v.Unmarshal(&cfg)
	require.NoError(t, err)

	return cfg
}

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "cli", cfg.Source)
	assert.Equal(t, []string{"--all"}, cfg.Git.Scope)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, filepath.Join(StateDir(), "runs.db"), cfg.DB.Path)
	assert.Equal(t, ".lineage", filepath.Base(StateDir()))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
source: gogit
cache:
  ttl: 2m
git:
  scope: ["--remotes"]
`)

	assert.Equal(t, "gogit", cfg.Source)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"--remotes"}, cfg.Git.Scope)
	assert.Equal(t, "git", cfg.Git.Binary, "unset keys fall back to defaults")
	assert.Equal(t, "text", cfg.Output.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("LINEAGE_OUTPUT_FORMAT", "yaml")
	t.Setenv("LINEAGE_WATCH_DEBOUNCE", "2s")

	cfg := loadConfigFromYAML(t, "output:\n  color: never\n")

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestDefaultConfigTemplate_Loads(t *testing.T) {
	cfg := loadConfigFromYAML(t, DefaultConfigTemplate())
	require.NoError(t, cfg.Validate())

	defaults := Defaults()
	assert.Equal(t, defaults.Source, cfg.Source)
	assert.Equal(t, defaults.Git, cfg.Git)
	assert.Equal(t, defaults.Cache, cfg.Cache)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Watch, cfg.Watch)
	assert.Equal(t, defaults.Tracing, cfg.Tracing)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "unknown source", mutate: func(c *Config) { c.Source = "svn" }, wantErr: "source"},
		{name: "cli without binary", mutate: func(c *Config) { c.Git.Binary = "" }, wantErr: "git.binary"},
		{name: "gogit without binary", mutate: func(c *Config) { c.Source = "gogit"; c.Git.Binary = "" }},
		{name: "multi-line delimiter", mutate: func(c *Config) { c.Git.Delimiter = "a\nb" }, wantErr: "git.delimiter"},
		{name: "negative timeout", mutate: func(c *Config) { c.Git.Timeout = -time.Second }, wantErr: "git.timeout"},
		{name: "cache disabled", mutate: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -1 }, wantErr: "cache.ttl"},
		{name: "db without path", mutate: func(c *Config) { c.DB.Path = "" }, wantErr: "db.path"},
		{name: "db disabled without path", mutate: func(c *Config) { c.DB.Enabled = false; c.DB.Path = "" }},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "json" }, wantErr: "output.format"},
		{name: "unknown color", mutate: func(c *Config) { c.Output.Color = "sometimes" }, wantErr: "output.color"},
		{name: "zero debounce", mutate: func(c *Config) { c.Watch.Debounce = 0 }, wantErr: "watch.debounce"},
		{name: "otlp without endpoint", mutate: func(c *Config) { c.Tracing.Exporter = "otlp" }, wantErr: "tracing.endpoint"},
		{name: "otlp with endpoint", mutate: func(c *Config) { c.Tracing.Exporter = "otlp"; c.Tracing.Endpoint = "localhost:4317" }},
		{name: "unknown exporter", mutate: func(c *Config) { c.Tracing.Exporter = "zipkin" }, wantErr: "tracing.exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Source = "svn"
	cfg.Output.Format = "json"

	err := cfg.Validate()
	require.ErrorContains(t, err, "source")
	require.ErrorContains(t, err, "output.format")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
