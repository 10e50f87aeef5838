// Package main provides the entry point for the profile optimizer service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "optimizer_agent",
	Short: "AI profile optimization service",
	Long:  "Analyzes and optimizes professional profiles with multiple AI providers, served over a REST API with real-time progress streaming or run one-shot from the CLI.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file (defaults to CONFIG_FILE env var)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
