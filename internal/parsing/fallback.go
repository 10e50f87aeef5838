package parsing

import (
	"time"

	"github.com/jonathan/profile-optimizer/internal/types"
)

// FallbackAnalysis is the fixed analysis substituted when model output
// cannot be decoded. Every value is documented API surface; callers depend
// on these exact constants.
func FallbackAnalysis(profile types.ProfileSnapshot) types.AnalysisResult {
	return types.AnalysisResult{
		OverallScore: 75,
		SectionScores: types.SectionScores{
			Headline:     80,
			Summary:      70,
			Experience:   75,
			Skills:       80,
			Completeness: 70,
			Engagement:   75,
		},
		Strengths:       []string{"Clear professional title", "Relevant experience"},
		Weaknesses:      []string{"Summary could be more compelling", "Missing key skills"},
		Recommendations: []string{"Enhance summary with achievements", "Add trending skills"},
		Keywords:        []string{"leadership", "innovation", "results-driven"},
		Timestamp:       time.Now().UTC(),
		ProfileID:       profile.ID,
	}
}

// FallbackOptimization is the fixed optimization substituted when model
// output cannot be decoded: one high-impact headline improvement and a
// fixed score delta.
func FallbackOptimization(profile types.ProfileSnapshot) types.OptimizationResult {
	return types.OptimizationResult{
		Improvements: []types.Improvement{
			{
				Section:   "headline",
				Current:   profile.Headline,
				Optimized: profile.Headline + " | Expert in Modern Technologies",
				Reasoning: "Adding specific expertise increases visibility",
				Impact:    types.ImpactHigh,
				Keywords:  []string{"expert", "modern", "technologies"},
			},
		},
		ScoreImprovement: types.ScoreImprovement{Before: 75, After: 85, Increase: 10},
		Timestamp:        time.Now().UTC(),
		ProfileID:        profile.ID,
	}
}
