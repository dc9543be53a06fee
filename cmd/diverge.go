package cmd

import (
	"github.com/spf13/cobra"

	apphistory "github.com/zjrosen/lineage/internal/history/application"
	"github.com/zjrosen/lineage/internal/render"
)

var divergeFrom string

var divergeCmd = &cobra.Command{
	Use:   "diverge [REV]",
	Short: "Compare authoring order with integration order",
	Long: `Walk the ancestry of REV and diff it against the same commits ordered by
committer date. Lines marked "-" show where authoring order puts a commit,
"+" where integration order does.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiverge,
}

func init() {
	divergeCmd.Flags().StringVar(&divergeFrom, "from", "", "revision to start from")
	divergeCmd.Flags().String("source", "", "commit loader: cli or gogit")
	rootCmd.AddCommand(divergeCmd)
}

func runDiverge(cmd *cobra.Command, args []string) error {
	rev := divergeFrom
	if len(args) == 1 {
		rev = args[0]
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	result, err := apphistory.NewService(src).Ancestry(cmd.Context(), rev)
	if err != nil {
		return err
	}

	printer := render.NewPrinter(cmd.OutOrStdout(), render.ColorMode(cfg.Output.Color))
	return printer.Divergence(apphistory.Divergence(result.Commits()))
}
