// Package config provides configuration types and defaults for lineage.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LINEAGE_CACHE_TTL.
const EnvPrefix = "LINEAGE"

// Config holds all configuration options for lineage.
type Config struct {
	RepoDir string        `mapstructure:"repo_dir"`
	Source  string        `mapstructure:"source"` // "cli" or "gogit"
	Git     GitConfig     `mapstructure:"git"`
	Cache   CacheConfig   `mapstructure:"cache"`
	DB      DBConfig      `mapstructure:"db"`
	Output  OutputConfig  `mapstructure:"output"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Log     LogConfig     `mapstructure:"log"`
}

// GitConfig controls the rev-list loader.
type GitConfig struct {
	Binary    string        `mapstructure:"binary"`
	Scope     []string      `mapstructure:"scope"`     // rev-list scope flags
	Delimiter string        `mapstructure:"delimiter"` // empty uses the built-in sentinel
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls the in-memory commit cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // 0 disables caching
}

// DBConfig controls the run store.
type DBConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "text" or "yaml"
	Color  string `mapstructure:"color"`  // "auto", "always" or "never"
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"` // "none", "stdout" or "otlp"
	Endpoint string `mapstructure:"endpoint"` // otlp gRPC endpoint, host:port
	File     string `mapstructure:"file"`     // stdout exporter target, empty for stderr
}

// LogConfig controls the debug log.
type LogConfig struct {
	File string `mapstructure:"file"`
}

// StateDir returns ~/.lineage, or .lineage when the home directory is unknown.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lineage"
	}
	return filepath.Join(home, ".lineage")
}

// DefaultConfigPath returns the user config file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(StateDir(), "config.yaml")
	}
	return filepath.Join(dir, "lineage", "config.yaml")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Source: "cli",
		Git: GitConfig{
			Binary:  "git",
			Scope:   []string{"--all"},
			Timeout: time.Minute,
		},
		Cache: CacheConfig{
			TTL: 30 * time.Second,
		},
		DB: DBConfig{
			Enabled: true,
			Path:    filepath.Join(StateDir(), "runs.db"),
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Exporter: "none",
		},
		Log: LogConfig{
			File: filepath.Join(StateDir(), "debug.log"),
		},
	}
}

// SetDefaults registers Defaults() with v and enables LINEAGE_* environment
// overrides for every key.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("repo_dir", d.RepoDir)
	v.SetDefault("source", d.Source)
	v.SetDefault("git.binary", d.Git.Binary)
	v.SetDefault("git.scope", d.Git.Scope)
	v.SetDefault("git.delimiter", d.Git.Delimiter)
	v.SetDefault("git.timeout", d.Git.Timeout)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("db.enabled", d.DB.Enabled)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.file", d.Tracing.File)
	v.SetDefault("log.file", d.Log.File)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error

	switch c.Source {
	case "cli", "gogit":
	default:
		errs = append(errs, fmt.Errorf("source: unknown loader %q (want cli or gogit)", c.Source))
	}

	if c.Source == "cli" && c.Git.Binary == "" {
		errs = append(errs, errors.New("git.binary: required for the cli source"))
	}
	if strings.ContainsAny(c.Git.Delimiter, "\r\n") {
		errs = append(errs, errors.New("git.delimiter: must be a single line"))
	}
	if c.Git.Timeout < 0 {
		errs = append(errs, errors.New("git.timeout: must not be negative"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl: must not be negative"))
	}
	if c.DB.Enabled && c.DB.Path == "" {
		errs = append(errs, errors.New("db.path: required when db.enabled is true"))
	}

	switch c.Output.Format {
	case "text", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q (want text or yaml)", c.Output.Format))
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("output.color: unknown mode %q (want auto, always or never)", c.Output.Color))
	}

	if c.Watch.Debounce <= 0 {
		errs = append(errs, errors.New("watch.debounce: must be positive"))
	}

	switch c.Tracing.Exporter {
	case "none", "stdout":
	case "otlp":
		if c.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint: required for the otlp exporter"))
		}
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter: unknown exporter %q (want none, stdout or otlp)", c.Tracing.Exporter))
	}

	return errors.Join(errs...)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# lineage configuration
#
# Every key can be overridden with an environment variable:
# LINEAGE_<SECTION>_<KEY>, e.g. LINEAGE_CACHE_TTL=1m

# Repository to walk (default: current directory)
# repo_dir: /path/to/repo

# How commits are loaded:
#   cli    - run the git binary (git rev-list)
#   gogit  - read the object database in-process
source: cli

git:
  binary: git
  # Scope flags passed to rev-list, e.g. ["--all"], ["--remotes"], ["--branches"]
  scope:
    - --all
  timeout: 1m
  # Separator between commits in rev-list output. Change only if a commit
  # message in your history contains it.
  # delimiter: "#+-=+-=+-=#"

cache:
  ttl: 30s  # 0 disables the in-memory commit cache

# Recorded walks ('lineage walk --save', 'lineage runs')
db:
  enabled: true
  # path: ~/.lineage/runs.db

output:
  format: text  # text or yaml
  color: auto   # auto, always or never

watch:
  debounce: 500ms

tracing:
  exporter: none  # none, stdout or otlp
  # endpoint: localhost:4317
  # file: /tmp/lineage-spans.json

# Debug log, written only with --debug or LINEAGE_DEBUG=1
# log:
#   file: ~/.lineage/debug.log
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
