package app

import (
	"context"
	"io"
	"os"

	"github.com/oshokin/aigc-client/internal/config"
	"github.com/oshokin/aigc-client/internal/logger"
)

// ExecuteConfigInitCommand writes a starter configuration file.
func ExecuteConfigInitCommand(ctx context.Context, path string, overwrite bool) {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if err := config.WriteDefaultConfig(path, overwrite); err != nil {
		logger.Fatalf(ctx, "Failed to write configuration: %v", err)
	}

	logger.Infof(ctx, "Configuration written to %s", path)
}

// ExecuteConfigShowCommand prints the effective configuration.
func ExecuteConfigShowCommand(ctx context.Context, cfg *config.Config) {
	if err := RunConfigShow(cfg, os.Stdout); err != nil {
		logger.Fatalf(ctx, "Failed to render configuration: %v", err)
	}
}

// RunConfigShow renders cfg as YAML to out.
func RunConfigShow(cfg *config.Config, out io.Writer) error {
	data, err := config.Dump(cfg)
	if err != nil {
		return err
	}

	_, err = out.Write(data)

	return err
}

// ExecuteConfigSetCommand stores one key in the configuration file at path.
func ExecuteConfigSetCommand(ctx context.Context, path, key, value string) {
	if err := config.SaveValue(path, key, value); err != nil {
		logger.Fatalf(ctx, "Failed to save configuration: %v", err)
	}

	logger.Infof(ctx, "Saved %s", key)
}
