package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tailorshop",
	Short: "Star Tailors shop management",
	Long: `Star Tailors runs the shop's billing, customer records and the
production workflow of every order (cutting, stitching, finishing, packaging).

Use "serve" to start the REST API, or the client commands to talk to a
running server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
