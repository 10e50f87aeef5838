// Package selection maps a requested model id and profile characteristics
// to a concrete (provider, model) pair. Selection is pure: identical inputs
// always yield identical output.
package selection

import "github.com/jonathan/profile-optimizer/internal/llm"

// ModelInfo is one entry in the fixed model catalog. The catalog is
// descriptive metadata plus the hard prompt ceiling enforced before any
// vendor call.
type ModelInfo struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Provider       llm.Provider `json:"provider"`
	Model          string       `json:"model"`
	MaxPromptChars int          `json:"-"`
	Capabilities   []string     `json:"capabilities"`
	Strengths      []string     `json:"strengths"`
}

// catalog is the fixed id -> (provider, model) table. Read-only.
var catalog = []ModelInfo{
	{
		ID:             "gpt-4",
		Name:           "GPT-4",
		Provider:       llm.ProviderOpenAI,
		Model:          "gpt-4",
		MaxPromptChars: 24000,
		Capabilities:   []string{"text-generation", "analysis", "optimization"},
		Strengths:      []string{"Creative writing", "Comprehensive analysis", "Industry insights"},
	},
	{
		ID:             "claude-3",
		Name:           "Claude 3",
		Provider:       llm.ProviderAnthropic,
		Model:          "claude-3-sonnet-20240229",
		MaxPromptChars: 72000,
		Capabilities:   []string{"text-generation", "analysis", "optimization"},
		Strengths:      []string{"Professional tone", "Clarity", "Authenticity"},
	},
	{
		ID:             "gemini-pro",
		Name:           "Gemini Pro",
		Provider:       llm.ProviderGoogle,
		Model:          "gemini-pro",
		MaxPromptChars: 96000,
		Capabilities:   []string{"text-generation", "analysis", "multimodal"},
		Strengths:      []string{"Technical profiles", "Data analysis", "Multilingual"},
	},
	{
		ID:             "command",
		Name:           "Command",
		Provider:       llm.ProviderCohere,
		Model:          "command",
		MaxPromptChars: 12000,
		Capabilities:   []string{"text-generation", "classification", "embeddings"},
		Strengths:      []string{"Business writing", "Classification", "Semantic search"},
	},
}

// Lookup returns the catalog entry for a model id.
func Lookup(id string) (ModelInfo, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// ByProvider returns the catalog entry for a provider. Every provider has
// exactly one catalog model.
func ByProvider(p llm.Provider) (ModelInfo, bool) {
	for _, m := range catalog {
		if m.Provider == p {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// PromptCeiling returns the prompt size ceiling for a model name, or 0 if
// the model is unknown.
func PromptCeiling(model string) int {
	for _, m := range catalog {
		if m.Model == model {
			return m.MaxPromptChars
		}
	}
	return 0
}

// AvailableModels returns catalog metadata for every provider that has a
// configured adapter, in catalog order. Purely descriptive.
func AvailableModels(reg *llm.Registry) []ModelInfo {
	out := make([]ModelInfo, 0, len(catalog))
	for _, m := range catalog {
		if reg.Has(m.Provider) {
			out = append(out, m)
		}
	}
	return out
}
