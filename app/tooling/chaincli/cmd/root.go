// Package cmd contains the chain client commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	url    string
	output string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml.")
}

var rootCmd = &cobra.Command{
	Use:          "chaincli",
	Short:        "Client for a proof of work ledger node",
	SilenceUsage: true,
}

// Execute runs the command line and exits with a non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
