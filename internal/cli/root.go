// Package cli wires the tos commands.
package cli

import (
	"log/slog"

	"github.com/me/tos/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the tos CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tos",
		Short: "tos is a teaching OS thread scheduler simulator",
		Long:  "tos runs scheduling workloads on a three-band thread dispatcher and records the trace.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", logging.DefaultFormat(), "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}
