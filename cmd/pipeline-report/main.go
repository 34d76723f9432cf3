// Package main provides the pipeline-report command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipeline-report",
	Short: "Offline tools for the candidate pipeline",
	Long:  "pipeline-report renders the pipeline board straight from the database and triggers SLA sweeps without going through the API.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
