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
	analyzeProfilePath string
	analyzeModelID     string
	analyzeJSON        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a profile from a JSON file",
	Long:  `Run a one-shot profile analysis: score the profile per section and list strengths, weaknesses and recommendations.`,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeProfilePath, "profile", "p", "", "Path to profile JSON file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeModelID, "model", "m", selection.ModelIDAuto, "Model id (gpt-4, claude-3, gemini-pro, command) or auto")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw JSON result")
	_ = analyzeCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(analyzeCmd)
}

// loadProfile reads a ProfileSnapshot from a JSON file.
func loadProfile(path string) (types.ProfileSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProfileSnapshot{}, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	var profile types.ProfileSnapshot
	if err := json.Unmarshal(data, &profile); err != nil {
		return types.ProfileSnapshot{}, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return profile, nil
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	logger, err := observability.NewLogger(false)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	profile, err := loadProfile(analyzeProfilePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := buildRuntime(ctx, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.service.Analyze(ctx, types.OptimizationRequest{
		Kind:     types.KindAnalyze,
		Profile:  profile,
		ModelID:  analyzeModelID,
		Identity: "cli",
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	observability.NewPrinter(os.Stdout).PrintAnalysis(&result)
	return nil
}
