// Package types defines the core data model shared across the optimization pipeline.
package types

// ProfileSnapshot is an immutable snapshot of a professional profile as
// provided by the caller. The pipeline never mutates it.
type ProfileSnapshot struct {
	ID         string       `json:"id"`
	Headline   string       `json:"headline"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
}

// Experience is a single position entry in a profile.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is a single education entry in a profile.
type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
	Years  string `json:"years,omitempty"`
}

// Mode selects how aggressively the optimizer rewrites content.
type Mode string

// Optimization modes
const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

// Kind distinguishes the two pipeline products.
type Kind string

// Pipeline kinds
const (
	KindAnalyze  Kind = "analyze"
	KindOptimize Kind = "optimize"
)

// OptimizationRequest carries everything the pipeline needs to run one session.
type OptimizationRequest struct {
	SessionID   string            `json:"sessionId"`
	Kind        Kind              `json:"kind"`
	Profile     ProfileSnapshot   `json:"profile"`
	Mode        Mode              `json:"mode"`
	ModelID     string            `json:"modelId"`
	Preferences map[string]string `json:"preferences,omitempty"`
	Identity    string            `json:"-"`
}
