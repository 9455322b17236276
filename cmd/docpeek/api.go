package main

import (
	"github.com/spf13/cobra"

	"github.com/docpeek/docpeek/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running docpeek server via HTTP.

These commands require a running server (docpeek serve).
Use --server to specify a custom server URL.

Examples:
  docpeek api health                      # Check server health
  docpeek api upload scan.pdf             # Upload a PDF
  docpeek api extract <id> -b tesseract   # Run OCR extraction
  docpeek api result <result-id>          # Fetch a stored envelope`,
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	for _, ep := range endpoints.All() {
		if cmd := ep.Command(getServerURL); cmd != nil {
			apiCmd.AddCommand(cmd)
		}
	}

	rootCmd.AddCommand(apiCmd)
}
