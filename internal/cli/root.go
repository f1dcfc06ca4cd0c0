// Package cli implements the schedq command line client for the REST API.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/schedq/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking SCHEDQ_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SCHEDQ_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the schedq CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedq",
		Short: "schedq — priority round-robin task scheduler client",
		Long:  "schedq creates, monitors, and manages tasks on a schedq scheduling server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(flagLogLevel, flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "schedq server URL (or SCHEDQ_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newGetCmd(),
		newUpdateCmd(),
		newRmCmd(),
		newStatsCmd(),
	)

	return root
}
