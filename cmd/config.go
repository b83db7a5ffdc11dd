package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/aigc-client/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
		// Subcommands load the configuration themselves, if at all.
		PersistentPreRun: func(*cobra.Command, []string) {},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter configuration file.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			force, _ := cmd.Flags().GetBool("force")

			app.ExecuteConfigInitCommand(cmd.Context(), configFilenameFromFlag, force)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, flags included.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			initConfig(cmd, args)

			app.ExecuteConfigShowCommand(cmd.Context(), appConfig)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configSetCmd = &cobra.Command{
		Use:   "set {key} {value}",
		Short: "Store one key in the configuration file, keeping its layout.",
		Args:  cobra.ExactArgs(2), //nolint:mnd // Key and value.
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteConfigSetCommand(cmd.Context(), configFilenameFromFlag, args[0], args[1])
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file.")

	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
