// Package cmd implements the lineage command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/tracing"
)

// localConfigFile is looked up in the working directory before the user
// config file.
const localConfigFile = ".lineage.yaml"

var (
	cfgFile string
	cfg     config.Config
	v       *viper.Viper
	version = "dev"

	// cleanups run after every command, last registered first.
	cleanups []func() error
)

// flagKeys maps command flags onto config keys. A flag only overrides the
// config when it is set on the command line.
var flagKeys = map[string]string{
	"repo":   "repo_dir",
	"debug":  "debug",
	"color":  "output.color",
	"source": "source",
	"format": "output.format",
}

var rootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Walk git commit ancestry in authoring order",
	Long: `lineage lists the ancestry of a commit in the order the changes were
authored rather than the order they were integrated.

Each line shows the commit hash, its author date, " *" when the commit was
re-applied (its author and committer dates differ) and " <--" when it was
committed later than the commit listed before it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./.lineage.yaml, then "+config.DefaultConfigPath()+")")
	flags.StringP("repo", "C", "", "repository directory (default: current directory)")
	flags.String("color", "", "color output: auto, always or never")
	flags.Bool("debug", false, "write debug logs to log.file")

	cobra.OnFinalize(finalize)
}

// Execute runs the command line and returns the first error.
func Execute(ver string) error {
	version = ver
	rootCmd.Version = ver
	return rootCmd.Execute()
}

func initConfig(cmd *cobra.Command, _ []string) error {
	v = viper.New()
	config.SetDefaults(v)
	v.SetDefault("debug", false)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	path := configFile()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg = config.Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if cfg.RepoDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.RepoDir = wd
	}
	if abs, err := filepath.Abs(cfg.RepoDir); err == nil {
		cfg.RepoDir = abs
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if v.GetBool("debug") {
		closeLog, err := log.Init(cfg.Log.File, true)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		cleanups = append(cleanups, closeLog)
	}

	shutdown, err := tracing.Setup(cmd.Context(), cfg.Tracing, version)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(ctx)
	})

	log.Debug(log.CatConfig, "Configuration loaded", "file", path, "repo", cfg.RepoDir, "source", cfg.Source, "version", version)
	return nil
}

// configFile returns --config, else the first existing default location,
// else "".
func configFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	for _, candidate := range []string{localConfigFile, config.DefaultConfigPath()} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func finalize() {
	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		errs = append(errs, cleanups[i]())
	}
	cleanups = nil
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintln(os.Stderr, "lineage: cleanup:", err)
	}
}
