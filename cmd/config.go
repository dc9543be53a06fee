package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/lineage/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the lineage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a commented default config file",
	Long: `Write the default configuration to PATH, or to --config, or to
` + config.DefaultConfigPath() + `.`,
	Args: cobra.MaximumNArgs(1),
	// A broken existing config must not prevent writing a new one.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings := v.AllSettings()
		settings["repo_dir"] = cfg.RepoDir
		out, err := yaml.Marshal(printable(settings))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// printable renders durations the way they are written in config files.
func printable(settings map[string]any) map[string]any {
	for k, val := range settings {
		switch val := val.(type) {
		case time.Duration:
			settings[k] = val.String()
		case map[string]any:
			settings[k] = printable(val)
		}
	}
	return settings
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	switch {
	case len(args) == 1:
		path = args[0]
	case cfgFile != "":
		path = cfgFile
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
