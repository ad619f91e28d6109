package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements ports.ChatProvider against a local Ollama server.
type Ollama struct {
	client    *api.Client
	model     string
	maxTokens int
}

// NewOllama creates a provider for the given model. An empty hostURL means the default local server.
func NewOllama(hostURL, model string, maxTokens int) (*Ollama, error) {
	if hostURL == "" {
		hostURL = defaultOllamaURL
	}
	parsed, err := url.Parse(hostURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", hostURL, err)
	}
	return &Ollama{
		client:    api.NewClient(parsed, http.DefaultClient),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Chat sends prompt as a single user message without streaming.
func (o *Ollama) Chat(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
	}
	if o.maxTokens > 0 {
		req.Options = map[string]any{"num_predict": o.maxTokens}
	}

	var response api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	return response.Message.Content, nil
}
