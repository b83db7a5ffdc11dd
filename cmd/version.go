package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/aigc-client/internal/utils"
	"github.com/oshokin/aigc-client/internal/version"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var versionCmd = &cobra.Command{
	Use:              "version",
	Short:            "Print build information and the default User-Agent.",
	Args:             cobra.NoArgs,
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		fmt.Fprintln(cmd.OutOrStdout(), "user agent: "+utils.DefaultUserAgent())
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.AddCommand(versionCmd)
}
