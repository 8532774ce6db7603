// Package llm wraps calls to language-model completion endpoints: provider
// implementations, a retrying client, and error normalization.
package llm

import "context"

// CallOptions shapes a single completion request.
type CallOptions struct {
	// Model identifies the target model; empty means the client default.
	Model string
	// WebSearch attaches the provider's web-search tool to the request.
	WebSearch bool
}

// Provider is the interface for all LLM providers.
type Provider interface {
	// Generate performs one request-response cycle and returns the
	// aggregated plain-text output.
	Generate(ctx context.Context, prompt string, opts CallOptions) (string, error)
	// Name returns the provider's registry key (e.g. "gemini").
	Name() string
}
