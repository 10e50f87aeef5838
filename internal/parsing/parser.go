// Package parsing turns raw model output into schema-valid analysis and
// optimization results. Both entry points are total: malformed output is
// absorbed into a fixed fallback value, never surfaced as an error.
package parsing

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/types"
)

// Score recomputation constants. The model's own arithmetic is ignored;
// free-text arithmetic from a generative model is not trusted.
const (
	baseScore            = 75
	pointsPerImprovement = 3
)

// Parser validates and normalizes model responses.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser. A nil logger is replaced with a no-op one.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger.Named("parser")}
}

// analysisPayload is the decode target for analysis responses. Scores decode
// as float64 so fractional model output survives the trip into ints.
type analysisPayload struct {
	OverallScore  float64 `json:"overallScore"`
	SectionScores struct {
		Headline     float64 `json:"headline"`
		Summary      float64 `json:"summary"`
		Experience   float64 `json:"experience"`
		Skills       float64 `json:"skills"`
		Completeness float64 `json:"completeness"`
		Engagement   float64 `json:"engagement"`
	} `json:"sectionScores"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	Keywords        []string `json:"keywords"`
}

type improvementPayload struct {
	Section   string   `json:"section"`
	Current   string   `json:"current"`
	Optimized string   `json:"optimized"`
	Reasoning string   `json:"reasoning"`
	Impact    string   `json:"impact"`
	Keywords  []string `json:"keywords"`
}

// optimizationPayload keeps the improvements list raw so an absent or null
// key is distinguishable from an explicit empty list.
type optimizationPayload struct {
	Improvements json.RawMessage `json:"improvements"`
}

// errMissingImprovements marks a decodable response that carries no
// improvements list at all. An explicit empty list is a valid
// zero-improvement result; a missing one is a schema failure.
var errMissingImprovements = errors.New("no improvements list in response")

// ParseAnalysis decodes raw model output into an AnalysisResult. Missing
// section scores default to 0, all scores are clamped to [0,100], and nil
// list fields become empty slices. On any decode failure the documented
// fallback analysis is returned instead.
func (p *Parser) ParseAnalysis(raw string, profile types.ProfileSnapshot) types.AnalysisResult {
	var payload analysisPayload
	if err := p.decode(raw, &payload); err != nil {
		p.logger.Warn("analysis response unparseable, using fallback",
			zap.String("profileId", profile.ID),
			zap.Error(err))
		return FallbackAnalysis(profile)
	}

	return types.AnalysisResult{
		OverallScore: types.ClampScore(int(payload.OverallScore)),
		SectionScores: types.SectionScores{
			Headline:     types.ClampScore(int(payload.SectionScores.Headline)),
			Summary:      types.ClampScore(int(payload.SectionScores.Summary)),
			Experience:   types.ClampScore(int(payload.SectionScores.Experience)),
			Skills:       types.ClampScore(int(payload.SectionScores.Skills)),
			Completeness: types.ClampScore(int(payload.SectionScores.Completeness)),
			Engagement:   types.ClampScore(int(payload.SectionScores.Engagement)),
		},
		Strengths:       orEmpty(payload.Strengths),
		Weaknesses:      orEmpty(payload.Weaknesses),
		Recommendations: orEmpty(payload.Recommendations),
		Keywords:        orEmpty(payload.Keywords),
		Timestamp:       time.Now().UTC(),
		ProfileID:       profile.ID,
	}
}

// ParseOptimization decodes raw model output into an OptimizationResult. A
// bare top-level array is accepted as the improvements list. Impact values
// are normalized to {high,medium,low} and the score improvement is always
// recomputed from the improvement count. On any decode failure the
// documented fallback optimization is returned instead.
func (p *Parser) ParseOptimization(raw string, profile types.ProfileSnapshot) types.OptimizationResult {
	improvements, err := p.decodeImprovements(raw)
	if err != nil {
		p.logger.Warn("optimization response unparseable, using fallback",
			zap.String("profileId", profile.ID),
			zap.Error(err))
		return FallbackOptimization(profile)
	}

	normalized := make([]types.Improvement, 0, len(improvements))
	for _, imp := range improvements {
		normalized = append(normalized, types.Improvement{
			Section:   imp.Section,
			Current:   imp.Current,
			Optimized: imp.Optimized,
			Reasoning: imp.Reasoning,
			Impact:    types.NormalizeImpact(strings.ToLower(strings.TrimSpace(imp.Impact))),
			Keywords:  orEmpty(imp.Keywords),
		})
	}

	return types.OptimizationResult{
		Improvements:     normalized,
		ScoreImprovement: ComputeScoreImprovement(len(normalized)),
		Timestamp:        time.Now().UTC(),
		ProfileID:        profile.ID,
	}
}

// ComputeScoreImprovement derives the expected score change from the number
// of accepted improvements: before is the fixed base, after is capped at 100.
func ComputeScoreImprovement(improvementCount int) types.ScoreImprovement {
	after := baseScore + pointsPerImprovement*improvementCount
	if after > 100 {
		after = 100
	}
	return types.ScoreImprovement{
		Before:   baseScore,
		After:    after,
		Increase: after - baseScore,
	}
}

// decode strips markdown fencing and unmarshals, retrying once through
// jsonrepair when the payload is almost-JSON (trailing commas, single
// quotes, truncation).
func (p *Parser) decode(raw string, target any) error {
	cleaned := CleanJSONBlock(raw)
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(repaired), target)
}

// decodeImprovements accepts either the documented object envelope or a bare
// improvements array, which some models return despite instructions.
func (p *Parser) decodeImprovements(raw string) ([]improvementPayload, error) {
	cleaned := CleanJSONBlock(raw)

	imps, err := extractImprovements([]byte(cleaned))
	if err == nil {
		return imps, nil
	}
	if errors.Is(err, errMissingImprovements) {
		// Valid JSON with no improvements list; repair cannot conjure one.
		return nil, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		return nil, err
	}
	return extractImprovements([]byte(repaired))
}

// extractImprovements unmarshals one candidate document, trying the object
// envelope first and a bare top-level array second. An envelope whose
// improvements key is absent or null yields errMissingImprovements.
func extractImprovements(data []byte) ([]improvementPayload, error) {
	var payload optimizationPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		if len(payload.Improvements) == 0 || string(payload.Improvements) == "null" {
			return nil, errMissingImprovements
		}
		var imps []improvementPayload
		if err := json.Unmarshal(payload.Improvements, &imps); err != nil {
			return nil, err
		}
		return imps, nil
	}

	var bare []improvementPayload
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	return nil, errors.New("neither an improvements envelope nor an improvements array")
}

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// Models often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line if present.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
