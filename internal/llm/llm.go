// Package llm abstracts the generative model behind a single Complete call so
// providers can be swapped or mocked.
package llm

import (
	"context"
	"fmt"
)

// Prompt is one system+user exchange plus per-call sampling parameters.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion is the raw model output.
type Completion struct {
	Text       string
	Model      string
	TokenCount int64
}

type Client interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string `json:"provider" toml:"provider"`
	Model    string `json:"model" toml:"model"`
	APIKey   string `json:"-" toml:"-"`
	BaseURL  string `json:"base_url" toml:"base_url"`
}

const (
	ProviderOpenAI = "openai"
	ProviderCompat = "compat"
	ProviderMock   = "mock"
)

// New builds the client named by s.Provider.
func New(s Settings) (Client, error) {
	switch s.Provider {
	case ProviderOpenAI:
		return NewOpenAI(s)
	case ProviderCompat:
		return NewCompat(s)
	case ProviderMock, "":
		return &Mock{}, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
}
