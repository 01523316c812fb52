package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-processor/internal/decimal"
	xmlreader "github.com/rezonia/cfdi-processor/internal/parser/xml"
	"github.com/rezonia/cfdi-processor/internal/sat"
)

var (
	verifyUUID        string
	verifyRfcEmisor   string
	verifyRfcReceptor string
	verifyTotal       string
	verifyTimeout     time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify an invoice's status with SAT",
	Long: `Check an invoice against SAT's ConsultaCFDIService web service.

The invoice can be given as a stamped CFDI XML file, or by its raw
identifying values (uuid, issuer RFC, recipient RFC and total).

Examples:
  cfdi-processor verify invoice.xml
  cfdi-processor verify --uuid ad662d33-6934-459c-a128-bdf0393e0f44 \
      --rfc-emisor AAA010101AAA --rfc-receptor BBB010101BB1 --total 6057.52`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyUUID, "uuid", "", "Fiscal folio (UUID) of the invoice")
	verifyCmd.Flags().StringVar(&verifyRfcEmisor, "rfc-emisor", "", "Issuer RFC")
	verifyCmd.Flags().StringVar(&verifyRfcReceptor, "rfc-receptor", "", "Recipient RFC")
	verifyCmd.Flags().StringVar(&verifyTotal, "total", "", "Invoice total")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", sat.DefaultTimeout, "Request timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	var clientOpts []sat.ClientOption
	if satBaseURL != "" {
		clientOpts = append(clientOpts, sat.WithBaseURL(satBaseURL))
	}
	clientOpts = append(clientOpts, sat.WithTimeout(verifyTimeout))
	client := sat.NewClient(clientOpts...)

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	var status *sat.StatusResponse
	switch {
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := xmlreader.ReadInvoice(data)
		if err != nil {
			return err
		}
		printVerbose("Parsed %s invoice, querying SAT\n", doc.CFDIVersion())
		status, err = client.VerifyDocument(ctx, doc)
		if err != nil {
			return err
		}
	case verifyUUID != "" && verifyRfcEmisor != "" && verifyRfcReceptor != "" && verifyTotal != "":
		total, err := decimal.FromString(verifyTotal)
		if err != nil {
			return fmt.Errorf("invalid total %q: %w", verifyTotal, err)
		}
		status, err = client.VerifyValues(ctx, verifyUUID, verifyRfcEmisor, verifyRfcReceptor, total)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("provide either a CFDI XML file or all of --uuid, --rfc-emisor, --rfc-receptor and --total")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}
