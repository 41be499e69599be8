package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl the feed once and store new releases",
	Args:  cobra.NoArgs,
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.controller.Run(ctx, cfg.FeedURL)
	cmd.Printf("run %s: %d candidates, %d new, %d stored, %d errors\n",
		sum.RunID, sum.Total, sum.New, sum.Stored, sum.Errors)
	return err
}
