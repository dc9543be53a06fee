package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/render"
	"github.com/zjrosen/lineage/internal/watch"
)

var (
	walkFrom  string
	walkSave  bool
	walkWatch bool
	walkLimit int
)

var walkCmd = &cobra.Command{
	Use:   "walk [REV]",
	Short: "List the ancestry of a commit in authoring order",
	Long: `Walk the ancestry of REV (default: the newest commit git lists) and print
one line per commit, newest author date first among the commits reachable so far.

REV may be a full or abbreviated hash, a branch, a tag or any revision
expression git understands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWalk,
}

func init() {
	walkCmd.Flags().StringVar(&walkFrom, "from", "", "revision to start from")
	walkCmd.Flags().String("source", "", "commit loader: cli or gogit")
	walkCmd.Flags().String("format", "", "output format: text or yaml")
	walkCmd.Flags().BoolVar(&walkSave, "save", false, "record the walk in the run store")
	walkCmd.Flags().BoolVarP(&walkWatch, "watch", "w", false, "walk again whenever a ref changes")
	walkCmd.Flags().IntVarP(&walkLimit, "limit", "n", 0, "print at most N commits (0: all)")
	rootCmd.AddCommand(walkCmd)
}

func runWalk(cmd *cobra.Command, args []string) error {
	rev := walkFrom
	if len(args) == 1 {
		rev = args[0]
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}

	var opts []apphistory.Option
	if walkSave {
		db, err := openRuns(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		opts = append(opts, apphistory.WithRunRepository(db.RunRepository()))
	}
	svc := apphistory.NewService(src, opts...)
	printer := render.NewPrinter(cmd.OutOrStdout(), render.ColorMode(cfg.Output.Color))

	walkOnce := func(ctx context.Context) error {
		result, err := svc.Ancestry(ctx, rev)
		if err != nil {
			return err
		}
		if walkSave {
			run, err := svc.Record(ctx, result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved run %s\n", run.GUID)
		}
		if walkLimit > 0 && len(result.Steps) > walkLimit {
			result.Steps = result.Steps[:walkLimit]
		}
		if cfg.Output.Format == "yaml" {
			return printer.WalkYAML(result)
		}
		return printer.Walk(result.Steps)
	}

	if err := walkOnce(cmd.Context()); err != nil {
		return err
	}
	if !walkWatch {
		return nil
	}

	w, err := watch.New(cfg.RepoDir, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Run(ctx, func(ctx context.Context) {
		svc.Invalidate()
		fmt.Fprintln(cmd.OutOrStdout())
		if err := walkOnce(ctx); err != nil {
			log.ErrorErr(log.CatWatch, "Walk after ref change failed", err)
			fmt.Fprintln(cmd.ErrOrStderr(), "lineage:", err)
		}
	})
}
