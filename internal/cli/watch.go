package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/wire-harvester/internal/logger"
)

var flagSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Crawl the feed repeatedly on the configured schedule",
	Long: `watch runs a crawl immediately and then on every tick of the configured
schedule (standard cron syntax or descriptors such as "@every 30m").
A tick that fires while the previous crawl is still running is skipped.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagSkipInitial, "skip-initial", false, "wait for the first tick instead of crawling at start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(*cobra.Command, []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	crawl := func() {
		if _, err := a.controller.Run(ctx, cfg.FeedURL); err != nil {
			log.ErrorObj("scheduled crawl failed", "watch_run_error", map[string]any{"error": err.Error()})
		}
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(cfg.Schedule, crawl); err != nil {
		return err
	}

	log.InfoObj("watching feed", "watch_start", map[string]any{
		"feed_url": cfg.FeedURL,
		"schedule": cfg.Schedule,
	})
	if !flagSkipInitial {
		crawl()
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	log.InfoObj("watch stopped", "watch_stop", nil)
	return nil
}

// cronLogger routes cron's own messages into the harvester logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.DebugObj(msg, "cron", kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := kvFields(keysAndValues)
	fields["error"] = err.Error()
	l.log.ErrorObj(msg, "cron_error", fields)
}

func kvFields(kv []any) map[string]any {
	fields := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}
