// Package cli wires the agentbridge commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/bridgeware/agentbridge/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentbridge",
		Short: "agentbridge — HTTP gateway to a managed AI-agent platform",
		Long:  "agentbridge fronts a managed AI-agent platform with a small HTTP API: chat turns with thread continuity, code-interpreter turns with file relay to blob storage, and document Q&A.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default agentbridge.yaml if present)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
