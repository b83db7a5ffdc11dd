package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/aigc-client/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var uploadCmd = &cobra.Command{
	Use:   "upload [flags] {url} {file}",
	Short: "Upload a file as the raw request body.",
	Long: `Upload a file as the raw request body with a progress bar.
The Content-Type is detected from the file contents unless --type or a header sets it.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // URL and file.
	Run: func(cmd *cobra.Command, args []string) {
		method, headers := requestFlags(cmd)
		contentType, _ := cmd.Flags().GetString("type")

		app.ExecuteUploadCommand(cmd.Context(), appConfig, app.UploadOptions{
			Method:      method,
			URL:         args[0],
			File:        args[1],
			ContentType: contentType,
			Headers:     headers,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	addRequestFlags(uploadCmd, "PUT")

	uploadCmd.Flags().StringP("type", "t", "", "Content-Type of the uploaded file.")

	rootCmd.AddCommand(uploadCmd)
}
