package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-optimizer/internal/observability"
	"github.com/jonathan/profile-optimizer/internal/selection"
	"github.com/jonathan/profile-optimizer/internal/types"
)

var (
	optimizeProfilePath string
	optimizeModelID     string
	optimizeMode        string
	optimizeJSON        bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize a profile from a JSON file",
	Long:  `Run a one-shot profile optimization: generate section-level improvement suggestions with an expected score change.`,
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeProfilePath, "profile", "p", "", "Path to profile JSON file (required)")
	optimizeCmd.Flags().StringVarP(&optimizeModelID, "model", "m", selection.ModelIDAuto, "Model id (gpt-4, claude-3, gemini-pro, command) or auto")
	optimizeCmd.Flags().StringVar(&optimizeMode, "mode", string(types.ModeAuto), "Optimization mode: manual or auto")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Print the raw JSON result")
	_ = optimizeCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(_ *cobra.Command, _ []string) error {
	mode := types.Mode(optimizeMode)
	if mode != types.ModeManual && mode != types.ModeAuto {
		return fmt.Errorf("invalid mode %q, expected manual or auto", optimizeMode)
	}

	logger, err := observability.NewLogger(false)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	profile, err := loadProfile(optimizeProfilePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := buildRuntime(ctx, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.service.Optimize(ctx, types.OptimizationRequest{
		Kind:     types.KindOptimize,
		Profile:  profile,
		Mode:     mode,
		ModelID:  optimizeModelID,
		Identity: "cli",
	})
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if optimizeJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	observability.NewPrinter(os.Stdout).PrintOptimization(&result)
	return nil
}
