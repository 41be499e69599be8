// Package cli holds the wire-harvester command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/wire-harvester/internal/config"
	"github.com/Adda-Baaj/wire-harvester/internal/logger"
)

var (
	flagVerbose bool
	flagDebug   bool
	flagConfig  string

	log logger.Logger = logger.NopLogger{}
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wire-harvester",
	Short: "Harvest structured press releases from the PR Newswire feed",
	Long: `wire-harvester reads the PR Newswire release feed, fetches every release
it has not stored before, extracts its dateline, issuer, topics and body text,
and stores the result in a local SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { _ = log.Sync() },
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log progress at info level")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log every step at debug level")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML/JSON/TOML config file")
}

func setup(*cobra.Command, []string) error {
	l, err := logger.New(logger.LevelFromFlags(flagVerbose, flagDebug))
	if err != nil {
		return err
	}
	log = l

	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
