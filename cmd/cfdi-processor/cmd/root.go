package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose    bool
	satBaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "cfdi-processor",
	Short: "Parse and verify Mexican electronic invoices (CFDI)",
	Long: `CFDI Processor is a CLI tool for working with Mexican electronic invoices.

Supports:
  - CFDI versions 3.3 and 4.0
  - Full schema validation against SAT's catalogs and field constraints
  - Invoice status verification against SAT's web service

Examples:
  # Parse an invoice to JSON
  cfdi-processor parse invoice.xml

  # Verify an invoice with SAT
  cfdi-processor verify invoice.xml

  # Verify by raw values
  cfdi-processor verify --uuid <uuid> --rfc-emisor <rfc> --rfc-receptor <rfc> --total 6057.52

  # Start the HTTP API
  cfdi-processor serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&satBaseURL, "sat-url", "", "SAT verification service URL (env: SAT_BASE_URL)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if satBaseURL == "" {
		satBaseURL = os.Getenv("SAT_BASE_URL")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
