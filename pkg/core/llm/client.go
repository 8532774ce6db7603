package llm

import (
	"context"
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// DefaultModel is used when neither the environment nor the caller names one.
const DefaultModel = "gemini-2.5-flash"

// defaultSecretsPath is the layered secrets file checked before the
// environment. Optional; absence is not an error.
const defaultSecretsPath = "secrets.hjson"

// Client wraps a provider with the retry policy. It is the handle the batch
// engine calls through.
type Client struct {
	Provider     Provider
	DefaultModel string
	Retry        RetryPolicy
}

// NewClient builds a client around a provider with the default retry policy.
func NewClient(provider Provider, defaultModel string) *Client {
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Client{
		Provider:     provider,
		DefaultModel: defaultModel,
		Retry:        DefaultRetryPolicy(),
	}
}

// Generate performs one logical request-response cycle: the underlying
// provider call wrapped in retry-with-backoff. On exhaustion the final error
// is returned for the caller to normalize.
func (c *Client) Generate(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	if opts.Model == "" {
		opts.Model = c.DefaultModel
	}
	return WithRetry(ctx, c.Retry, func() (string, error) {
		return c.Provider.Generate(ctx, prompt, opts)
	})
}

// secretsFile mirrors the optional secrets store. Both the scoped and the
// flat key shapes are accepted.
type secretsFile struct {
	Gemini struct {
		APIKey string `json:"api_key"`
	} `json:"gemini"`
	GeminiAPIKey string `json:"GEMINI_API_KEY"`
}

func readAPIKeyFromSecrets(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var secrets secretsFile
	if err := hjson.Unmarshal(data, &secrets); err != nil {
		return ""
	}
	if secrets.Gemini.APIKey != "" {
		return secrets.Gemini.APIKey
	}
	return secrets.GeminiAPIKey
}

// Setup resolves the API credential (secrets file first, then environment),
// builds the Gemini provider and returns the retrying client plus the default
// model. A missing credential fails fast: it is the one error in the pipeline
// that is not contained, because without a client no job can proceed.
func Setup(ctx context.Context) (*Client, string, error) {
	apiKey := readAPIKeyFromSecrets(defaultSecretsPath)
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, "", fmt.Errorf("GEMINI_API_KEY is not set: provide it via %s or the environment", defaultSecretsPath)
	}

	model := os.Getenv("DEFAULT_MODEL")
	if model == "" {
		model = DefaultModel
	}

	provider, err := NewGeminiProvider(ctx, apiKey)
	if err != nil {
		return nil, "", err
	}
	return NewClient(provider, model), model, nil
}
