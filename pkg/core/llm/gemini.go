package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// HighCapabilityModel is the one model that gets an elevated reasoning budget
// attached, and only when web search is enabled for the call. This is a
// narrow, explicit rule, not a per-model configuration table.
const HighCapabilityModel = "gemini-2.5-pro"

// elevatedThinkingBudget is the token budget attached in that special case.
const elevatedThinkingBudget int32 = 32768

// GeminiProvider implements Provider over Google's GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates the provider with a prepared client handle.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Generate sends one generateContent request. When search is enabled exactly
// one GoogleSearch tool descriptor is attached; otherwise no tools.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	config := &genai.GenerateContentConfig{}

	if opts.WebSearch {
		config.Tools = []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		}
		if opts.Model == HighCapabilityModel {
			config.ThinkingConfig = &genai.ThinkingConfig{
				ThinkingBudget: genai.Ptr(elevatedThinkingBudget),
			}
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, opts.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := aggregateText(result)

	// Append grounding citations when search produced any, so downstream
	// source extraction has real links to work with.
	if opts.WebSearch && len(result.Candidates) > 0 {
		cand := result.Candidates[0]
		if cand.GroundingMetadata != nil && len(cand.GroundingMetadata.GroundingChunks) > 0 {
			var citations []string
			for _, chunk := range cand.GroundingMetadata.GroundingChunks {
				if chunk.Web != nil {
					citations = append(citations, fmt.Sprintf("[%s](%s)", chunk.Web.Title, chunk.Web.URI))
				}
			}
			if len(citations) > 0 {
				text = fmt.Sprintf("%s\n\n**Sources:**\n%s", text, strings.Join(citations, "\n"))
			}
		}
	}

	return text, nil
}

// aggregateText flattens a response into plain text: the consolidated text
// accessor when non-blank, else every text fragment from the candidates'
// content parts joined by newline, else the raw string form of the response.
// An unexpected response shape never raises.
func aggregateText(result *genai.GenerateContentResponse) string {
	if text := result.Text(); strings.TrimSpace(text) != "" {
		return text
	}

	var parts []string
	for _, cand := range result.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	return fmt.Sprintf("%v", result)
}
