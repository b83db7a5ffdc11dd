package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/aigc-client/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var multipartCmd = &cobra.Command{
	Use:   "multipart [flags] {url}",
	Short: "Upload form fields as multipart/form-data.",
	Long: `Upload form fields as multipart/form-data, in the order given, with a progress bar.
Fields use curl syntax:
  -F purpose=fine-tune
  -F file=@train.jsonl
  -F file=@data.bin;type=application/jsonl;filename=train.jsonl`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		method, headers := requestFlags(cmd)
		fields, _ := cmd.Flags().GetStringArray("form")

		app.ExecuteMultipartCommand(cmd.Context(), appConfig, app.MultipartOptions{
			Method:  method,
			URL:     args[0],
			Fields:  fields,
			Headers: headers,
		})
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	addRequestFlags(multipartCmd, "POST")

	multipartCmd.Flags().StringArrayP("form", "F", nil, "form field, may be repeated.")

	rootCmd.AddCommand(multipartCmd)
}
