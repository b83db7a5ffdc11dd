package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
	"github.com/oshokin/aigc-client/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "aigc-client",
		Short: "Call AI-generation HTTP APIs through interchangeable transport backends.",
		Long: `aigc-client sends requests to AI-generation HTTP APIs through one of three backends:
- pooled:    connection-pooled, HTTP/2 capable, tuned for long event streams
- session:   session-based client with cookies and upload progress
- framework: framework client with retries disabled

It supports plain requests, raw and multipart uploads with progress, event streams,
and an event-stream relay server.`,
		Version:          version.Short(),
		SilenceUsage:     true,
		PersistentPreRun: initConfig,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmdFlags := rootCmd.PersistentFlags()

	rootCmdFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	addConfigFlags(rootCmdFlags)
}

// addConfigFlags registers the flags that override configuration values.
func addConfigFlags(rootCmdFlags *pflag.FlagSet) {
	rootCmdFlags.StringP(
		"backend",
		"b",
		"",
		"transport backend: pooled, session or framework.")

	rootCmdFlags.String(
		"base-url",
		"",
		"prefix for relative URLs, for example: https://api.openai.com/v1.")

	rootCmdFlags.String(
		"timeout",
		"",
		"whole-call timeout of the session and framework backends, for example: 30s, 5m.")

	rootCmdFlags.String(
		"stream-timeout",
		"",
		"whole-call timeout of the pooled backend, for example: 10m.")

	rootCmdFlags.String(
		"user-agent",
		"",
		"User-Agent sent when a request has none.")

	rootCmdFlags.String(
		"log-level",
		"",
		"logging level: debug, info, warn, error.")

	rootCmdFlags.Float64(
		"rate-limit",
		0,
		"requests per second allowed per host, 0 disables limiting.")

	rootCmdFlags.String(
		"max-upload-size",
		"",
		"largest file the upload commands accept, for example: 100MB.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("backend"); flag != nil && flag.Changed {
		cfg.Backend, _ = flags.GetString("backend")
	}

	if flag := flags.Lookup("base-url"); flag != nil && flag.Changed {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}

	if flag := flags.Lookup("timeout"); flag != nil && flag.Changed {
		cfg.Timeout, _ = flags.GetString("timeout")
	}

	if flag := flags.Lookup("stream-timeout"); flag != nil && flag.Changed {
		cfg.StreamTimeout, _ = flags.GetString("stream-timeout")
	}

	if flag := flags.Lookup("user-agent"); flag != nil && flag.Changed {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}

	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flag := flags.Lookup("rate-limit"); flag != nil && flag.Changed {
		cfg.RateLimit, _ = flags.GetFloat64("rate-limit")
	}

	if flag := flags.Lookup("max-upload-size"); flag != nil && flag.Changed {
		cfg.MaxUploadSize, _ = flags.GetString("max-upload-size")
	}

	return config.ValidateConfig(cfg)
}

// addRequestFlags registers the flags shared by the request commands.
func addRequestFlags(cmd *cobra.Command, defaultMethod string) {
	flags := cmd.Flags()

	flags.StringP("method", "X", defaultMethod, "HTTP method.")
	flags.StringArrayP("header", "H", nil, "request header in 'Name: Value' form, may be repeated.")
}

func requestFlags(cmd *cobra.Command) (string, []string) {
	method, _ := cmd.Flags().GetString("method")
	headers, _ := cmd.Flags().GetStringArray("header")

	return method, headers
}
