package cli

import (
	"github.com/spf13/cobra"
)

// Execute builds and runs the CLI.
func Execute() error {
	var (
		cfgFile  string
		logLevel string
	)

	rootCmd := &cobra.Command{
		Use:   "incident-copilot",
		Short: "An evidence-grounded incident analysis service for log files",
		Long: `incident-copilot ingests raw log files, detects their format, splits
them into metadata-rich chunks, and stores them as embeddings for
retrieval. The analyze API answers incident questions grounded only in
the retrieved chunks, with citations.

Supported log formats: JSON lines, logfmt, Java/ZooKeeper structured,
syslog, and plain text.

Hot-reload: When a config file is specified, chunking parameter changes
are applied without requiring a restart.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(
		NewServeCmd(&cfgFile, &logLevel),
		NewIngestCmd(&cfgFile, &logLevel),
		NewStatsCmd(),
		NewValidateCmd(&cfgFile),
		NewVersionCmd(),
	)

	return rootCmd.Execute()
}
