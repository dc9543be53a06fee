package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/lineage/internal/render"
)

var (
	runsLimit int
	runsAll   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect walks recorded with 'lineage walk --save'",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded walks, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show GUID",
	Short: "Print a recorded walk",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete GUID",
	Short: "Delete a recorded walk",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "show at most N runs (0: all)")
	runsListCmd.Flags().BoolVar(&runsAll, "all", false, "include runs of every repository")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	db, err := openRuns(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repoDir := cfg.RepoDir
	if runsAll {
		repoDir = ""
	}
	runs, err := db.RunRepository().List(repoDir, runsLimit)
	if err != nil {
		return err
	}
	return render.NewPrinter(cmd.OutOrStdout(), render.ColorMode(cfg.Output.Color)).Runs(runs)
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	db, err := openRuns(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	run, err := db.RunRepository().FindByGUID(args[0])
	if err != nil {
		return err
	}
	return render.NewPrinter(cmd.OutOrStdout(), render.ColorMode(cfg.Output.Color)).Run(run)
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	db, err := openRuns(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.RunRepository().Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted run %s\n", args[0])
	return nil
}
