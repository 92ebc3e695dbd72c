package llm

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

// Compat targets OpenAI-compatible endpoints (self-hosted gateways, Ollama,
// vLLM) through go-openai. An API key is optional.
type Compat struct {
	model  string
	client *goopenai.Client
}

func NewCompat(s Settings) (*Compat, error) {
	if s.BaseURL == "" {
		return nil, errors.New("compat provider requires base_url")
	}
	if s.Model == "" {
		return nil, errors.New("llm model is required")
	}
	cfg := goopenai.DefaultConfig(s.APIKey)
	cfg.BaseURL = s.BaseURL
	return &Compat{model: s.Model, client: goopenai.NewClientWithConfig(cfg)}, nil
}

func (c *Compat) Complete(ctx context.Context, p Prompt) (Completion, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: p.System},
			{Role: goopenai.ChatMessageRoleUser, Content: p.User},
		},
		MaxTokens:   p.MaxTokens,
		Temperature: float32(p.Temperature),
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("compat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("compat: empty choices")
	}
	return Completion{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokenCount: int64(resp.Usage.TotalTokens),
	}, nil
}
