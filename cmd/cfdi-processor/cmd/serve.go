package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-processor/internal/server"
)

var (
	serverAddr     string
	serverDebug    bool
	verifyDisabled bool
	readTimeout    time.Duration
	writeTimeout   time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for parsing and verifying CFDIs.

The API provides endpoints for:
  - POST /api/v1/parse   - Parse a CFDI XML document
  - POST /api/v1/verify  - Verify an invoice's status with SAT
  - GET  /health         - Health check

Examples:
  # Start server on default port
  cfdi-processor serve

  # Start on a custom port without SAT verification
  cfdi-processor serve --address :9090 --no-verify

  # Start in debug mode
  cfdi-processor serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().BoolVar(&verifyDisabled, "no-verify", false, "Disable the SAT verification endpoint")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:        serverAddr,
		SATBaseURL:     satBaseURL,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		VerifyDisabled: verifyDisabled,
		Debug:          serverDebug,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if verifyDisabled {
		fmt.Println("SAT verification disabled")
	}

	return srv.Run()
}
