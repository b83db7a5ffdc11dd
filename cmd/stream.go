package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/aigc-client/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var streamCmd = &cobra.Command{
	Use:   "stream [flags] {url}",
	Short: "Print an event stream as it arrives.",
	Long: `Send a request and copy the raw response stream to stdout chunk by chunk.
The stream is not parsed. A rejected stream is logged with its status and body.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		method, headers := requestFlags(cmd)
		data, _ := cmd.Flags().GetString("data")

		app.ExecuteStreamCommand(cmd.Context(), appConfig, app.StreamOptions{
			Method:  method,
			URL:     args[0],
			Data:    data,
			Headers: headers,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	addRequestFlags(streamCmd, "POST")

	streamCmd.Flags().StringP("data", "d", "", "request body, or @path to send a file.")

	rootCmd.AddCommand(streamCmd)
}
