package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-optimizer/internal/observability"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available with the configured provider keys",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	logger, err := observability.NewLogger(false)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	rt, err := buildRuntime(context.Background(), logger)
	if err != nil {
		return err
	}
	defer rt.close()

	observability.NewPrinter(os.Stdout).PrintModels(rt.service.ListModels())
	return nil
}
