package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/aigc-client/internal/app"
	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Serve an event-stream relay in front of an upstream API.",
	Long: `Serve an HTTP relay: requests to /stream/{path} are forwarded to relay_upstream/{path}
and the upstream event stream is written back as text/event-stream, flushed chunk by chunk.
Prometheus metrics are served on /metrics and a health check on /healthz.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := bindRelayFlags(cmd.Flags(), appConfig); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
		}

		app.ExecuteRelayCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	relayCmd.Flags().StringP("listen", "l", "", "address to listen on, for example: 127.0.0.1:8080.")
	relayCmd.Flags().StringP("upstream", "u", "", "upstream base URL, for example: https://api.openai.com/v1.")

	rootCmd.AddCommand(relayCmd)
}

func bindRelayFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("listen"); flag != nil && flag.Changed {
		cfg.RelayListen, _ = flags.GetString("listen")
	}

	if flag := flags.Lookup("upstream"); flag != nil && flag.Changed {
		cfg.RelayUpstream, _ = flags.GetString("upstream")
	}

	return config.ValidateConfig(cfg)
}
