package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
	xmlreader "github.com/rezonia/cfdi-processor/internal/parser/xml"
)

var parseOutputFile string

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse CFDI XML files",
	Long: `Parse one or more CFDI XML files and print them as JSON.

Each file is validated against its declared version's schema (3.3 or 4.0):
field patterns, SAT catalog codes, decimal constraints, and the structure
of nested nodes including complementos.

Examples:
  cfdi-processor parse invoice.xml
  cfdi-processor parse invoice.xml -o invoice.json
  cfdi-processor parse *.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseOutputFile, "output", "o", "", "Output file (default: stdout)")
}

// parseResult pairs a parsed invoice with its source file for JSON output.
type parseResult struct {
	File    string        `json:"file"`
	Version string        `json:"version,omitempty"`
	Invoice cfdi.Document `json:"invoice,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	results := make([]*parseResult, 0, len(args))
	failures := 0

	for _, file := range args {
		printVerbose("Parsing: %s\n", file)
		result := &parseResult{File: file}

		data, err := os.ReadFile(file)
		if err != nil {
			result.Error = err.Error()
		} else if doc, err := xmlreader.ReadInvoice(data); err != nil {
			result.Error = err.Error()
		} else {
			result.Version = doc.CFDIVersion()
			result.Invoice = doc
		}

		if result.Error != "" {
			failures++
			printVerbose("  Error: %s\n", result.Error)
		}
		results = append(results, result)
	}

	if err := writeJSON(results); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed to parse", failures, len(args))
	}
	return nil
}

func writeJSON(v interface{}) error {
	out := os.Stdout
	if parseOutputFile != "" {
		f, err := os.Create(parseOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
