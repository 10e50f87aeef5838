package prompts

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/profile-optimizer/internal/types"
)

const promptFile = "optimizer.json"

// BuildAnalysisPrompt produces the analysis prompt for a profile. Missing
// profile fields render as empty strings or empty lists; building a prompt
// never fails.
func BuildAnalysisPrompt(profile types.ProfileSnapshot) string {
	tmpl := MustGet(promptFile, "analysis")
	return Format(tmpl, map[string]string{
		"Headline":   profile.Headline,
		"Summary":    profile.Summary,
		"Experience": marshalOrEmptyList(profile.Experience),
		"Education":  marshalOrEmptyList(profile.Education),
		"Skills":     strings.Join(profile.Skills, ", "),
	})
}

// BuildOptimizationPrompt produces the optimization prompt for a profile,
// mode, and preference map. Building a prompt never fails.
func BuildOptimizationPrompt(profile types.ProfileSnapshot, mode types.Mode, preferences map[string]string) string {
	tmpl := MustGet(promptFile, "optimization")
	return Format(tmpl, map[string]string{
		"Headline":    profile.Headline,
		"Summary":     profile.Summary,
		"Experience":  marshalOrEmptyList(profile.Experience),
		"Skills":      strings.Join(profile.Skills, ", "),
		"Mode":        string(mode),
		"Preferences": marshalOrEmptyObject(preferences),
	})
}

// marshalOrEmptyList serializes a list verbatim, rendering nil as [].
func marshalOrEmptyList[T any](items []T) string {
	if items == nil {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// marshalOrEmptyObject serializes a map verbatim, rendering nil as {}.
func marshalOrEmptyObject(m map[string]string) string {
	if m == nil {
		return "{}"
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
