// Package llm provides the vendor adapter contract and the provider registry
// for the optimization pipeline. Each external generative-AI vendor is
// reachable only through its Adapter; everything above this package works
// with plain prompt text in and plain response text out.
package llm

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Provider identifies an external generative-AI vendor.
type Provider string

// Supported providers
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderCohere    Provider = "cohere"
)

// PriorityOrder is the fixed fallback order used when no selection rule
// matches: the first configured provider in this order wins.
var PriorityOrder = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderCohere}

// Adapter is the contract every vendor client implements. Invoke performs
// one generation call and extracts a single text payload from whatever
// envelope the vendor returns; message/choice/content-block differences are
// fully absorbed here.
type Adapter interface {
	// Provider returns the vendor this adapter talks to.
	Provider() Provider
	// Invoke sends the prompt to the given model and returns the response text.
	Invoke(ctx context.Context, model, prompt string, maxTokens int, temperature float32) (string, error)
	// Close releases any resources held by the adapter.
	Close() error
}

// Registry holds the configured adapters, one per vendor. It is built once
// at startup and read-only afterwards, so it needs no synchronization.
type Registry struct {
	adapters map[Provider]Adapter
}

// NewRegistry builds a registry from the given adapters. A later adapter for
// the same provider replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[Provider]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Provider()] = a
	}
	return &Registry{adapters: m}
}

// Get returns the adapter for a provider, if one is configured.
func (r *Registry) Get(p Provider) (Adapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Has reports whether the provider has a configured adapter.
func (r *Registry) Has(p Provider) bool {
	_, ok := r.adapters[p]
	return ok
}

// Configured returns the configured providers in priority order.
func (r *Registry) Configured() []Provider {
	out := make([]Provider, 0, len(r.adapters))
	for _, p := range PriorityOrder {
		if r.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Close closes every adapter in the registry concurrently, returning the
// first error. Some vendor clients hold network connections whose shutdown
// can block.
func (r *Registry) Close() error {
	var g errgroup.Group
	for _, a := range r.adapters {
		g.Go(a.Close)
	}
	return g.Wait()
}
