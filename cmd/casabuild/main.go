// Package main provides the entry point for the casabuild CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casabuild",
	Short: "Real-estate listing site builder",
	Long:  "casabuild downloads a partner XML listing feed, renders it as HTML property cards spliced into a site template, and publishes the result.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
