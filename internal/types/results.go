package types

import "time"

// Impact levels for an improvement suggestion.
const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// SectionScores holds the per-section analysis scores. Exactly these six
// sections exist; a missing section decodes to 0.
type SectionScores struct {
	Headline     int `json:"headline"`
	Summary      int `json:"summary"`
	Experience   int `json:"experience"`
	Skills       int `json:"skills"`
	Completeness int `json:"completeness"`
	Engagement   int `json:"engagement"`
}

// AnalysisResult is the schema-valid output of a profile analysis.
// All scores are in [0,100] and all list fields are non-nil.
type AnalysisResult struct {
	OverallScore    int           `json:"overallScore"`
	SectionScores   SectionScores `json:"sectionScores"`
	Strengths       []string      `json:"strengths"`
	Weaknesses      []string      `json:"weaknesses"`
	Recommendations []string      `json:"recommendations"`
	Keywords        []string      `json:"keywords"`
	Timestamp       time.Time     `json:"timestamp"`
	ProfileID       string        `json:"profileId"`
}

// Improvement is one suggested change to a profile section.
type Improvement struct {
	Section   string   `json:"section"`
	Current   string   `json:"current"`
	Optimized string   `json:"optimized"`
	Reasoning string   `json:"reasoning"`
	Impact    string   `json:"impact"`
	Keywords  []string `json:"keywords"`
}

// ScoreImprovement summarizes the expected score change from applying all
// improvements. It is always computed by the pipeline, never taken from
// model output.
type ScoreImprovement struct {
	Before   int `json:"before"`
	After    int `json:"after"`
	Increase int `json:"increase"`
}

// OptimizationResult is the schema-valid output of a profile optimization.
type OptimizationResult struct {
	Improvements     []Improvement    `json:"improvements"`
	ScoreImprovement ScoreImprovement `json:"scoreImprovement"`
	Timestamp        time.Time        `json:"timestamp"`
	ProfileID        string           `json:"profileId"`
}

// ProgressEvent is one progress update for a running session. Within a
// session, Progress values are monotonically non-decreasing.
type ProgressEvent struct {
	SessionID   string    `json:"sessionId"`
	Progress    int       `json:"progress"`
	Status      string    `json:"status"`
	CurrentStep string    `json:"currentStep,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// SessionRecord is the append-only record handed to the persistence
// collaborator when a session reaches a terminal state. The core never
// reads it back.
type SessionRecord struct {
	SessionID        string        `json:"sessionId"`
	Mode             string        `json:"mode"`
	ModelUsed        string        `json:"modelUsed"`
	ScoreBefore      int           `json:"scoreBefore"`
	ScoreAfter       int           `json:"scoreAfter"`
	ImprovementCount int           `json:"improvementCount"`
	Improvements     []Improvement `json:"improvements,omitempty"`
	Status           string        `json:"status"`
}

// ClampScore restricts a score to the valid [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NormalizeImpact restricts an impact value to the known set.
// Unrecognized values map to low.
func NormalizeImpact(impact string) string {
	switch impact {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return impact
	default:
		return ImpactLow
	}
}
