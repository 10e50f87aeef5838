package selection

import (
	"fmt"
	"strings"

	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/types"
)

// ModelIDAuto requests automatic model selection from profile signals.
const ModelIDAuto = "auto"

// Selection is the resolved (provider, model) pair for one request.
// Ephemeral: recomputed per request.
type Selection struct {
	Provider llm.Provider `json:"provider"`
	Model    string       `json:"model"`
}

// ErrProviderUnavailable indicates the requested model's provider has no
// configured adapter. The caller may retry with ModelIDAuto.
type ErrProviderUnavailable struct {
	Provider llm.Provider
	ModelID  string
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s for model %s is not configured", e.Provider, e.ModelID)
}

// ErrNoProviderConfigured indicates no provider at all is configured.
type ErrNoProviderConfigured struct{}

func (e *ErrNoProviderConfigured) Error() string {
	return "no AI provider is configured"
}

// Keyword sets for auto-selection signals, matched against the lower-cased
// headline + summary.
var (
	techKeywords      = []string{"software", "developer", "engineer", "tech", "programming"}
	executiveKeywords = []string{"ceo", "cto", "director", "manager", "lead"}
)

// signals are the boolean profile characteristics the rule table consults.
type signals struct {
	tech      bool
	executive bool
}

// detectSignals derives the selection signals from the profile text.
func detectSignals(profile types.ProfileSnapshot) signals {
	content := strings.ToLower(profile.Headline + " " + profile.Summary)
	return signals{
		tech:      containsAny(content, techKeywords),
		executive: containsAny(content, executiveKeywords),
	}
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// rule is one entry in the ordered auto-selection table. Rules are
// evaluated top-down; the first match wins.
type rule struct {
	name     string
	provider llm.Provider
	applies  func(sig signals, configured map[llm.Provider]bool) bool
}

// autoRules is the ordered rule table for ModelIDAuto.
var autoRules = []rule{
	{
		name:     "tech profile prefers google",
		provider: llm.ProviderGoogle,
		applies: func(sig signals, configured map[llm.Provider]bool) bool {
			return sig.tech && configured[llm.ProviderGoogle]
		},
	},
	{
		name:     "executive profile prefers anthropic",
		provider: llm.ProviderAnthropic,
		applies: func(sig signals, configured map[llm.Provider]bool) bool {
			return sig.executive && configured[llm.ProviderAnthropic]
		},
	},
	{
		name:     "openai default",
		provider: llm.ProviderOpenAI,
		applies: func(_ signals, configured map[llm.Provider]bool) bool {
			return configured[llm.ProviderOpenAI]
		},
	},
}

// Select resolves a model id and profile to a concrete selection.
//
// A specific model id is looked up in the fixed catalog; if its provider is
// not configured the caller gets ErrProviderUnavailable and may retry with
// ModelIDAuto. Unknown ids fall through to auto selection. Auto selection
// evaluates the rule table top-down, then falls back to the first
// configured provider in priority order, and fails with
// ErrNoProviderConfigured only when nothing is configured.
func Select(modelID string, profile types.ProfileSnapshot, configuredProviders []llm.Provider) (Selection, error) {
	configured := make(map[llm.Provider]bool, len(configuredProviders))
	for _, p := range configuredProviders {
		configured[p] = true
	}

	if modelID != "" && modelID != ModelIDAuto {
		if info, ok := Lookup(modelID); ok {
			if !configured[info.Provider] {
				return Selection{}, &ErrProviderUnavailable{Provider: info.Provider, ModelID: modelID}
			}
			return Selection{Provider: info.Provider, Model: info.Model}, nil
		}
		// Unknown id behaves like auto.
	}

	sig := detectSignals(profile)
	for _, r := range autoRules {
		if r.applies(sig, configured) {
			return selectionFor(r.provider)
		}
	}

	for _, p := range llm.PriorityOrder {
		if configured[p] {
			return selectionFor(p)
		}
	}

	return Selection{}, &ErrNoProviderConfigured{}
}

func selectionFor(p llm.Provider) (Selection, error) {
	info, ok := ByProvider(p)
	if !ok {
		return Selection{}, &ErrNoProviderConfigured{}
	}
	return Selection{Provider: info.Provider, Model: info.Model}, nil
}
