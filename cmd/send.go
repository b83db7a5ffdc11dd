package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/aigc-client/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var sendCmd = &cobra.Command{
	Use:   "send [flags] {url}",
	Short: "Send a request and print the response.",
	Long: `Send a request and print the buffered response body.
The method defaults to POST when --data is given and GET otherwise.
A response outside 2xx is printed and the command exits with an error.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		method, headers := requestFlags(cmd)
		data, _ := cmd.Flags().GetString("data")
		include, _ := cmd.Flags().GetBool("include")

		app.ExecuteSendCommand(cmd.Context(), appConfig, app.SendOptions{
			Method:  method,
			URL:     args[0],
			Data:    data,
			Headers: headers,
			Include: include,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	addRequestFlags(sendCmd, "")

	sendCmd.Flags().StringP("data", "d", "", "request body, or @path to send a file.")
	sendCmd.Flags().BoolP("include", "i", false, "print the status line and headers.")

	rootCmd.AddCommand(sendCmd)
}
