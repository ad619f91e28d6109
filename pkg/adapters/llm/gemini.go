package llm

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Gemini implements ports.ChatProvider with the Google GenAI SDK.
type Gemini struct {
	apiKey    string
	model     string
	maxTokens int

	// Client creation requires a context, so it is deferred to the first call.
	mu     sync.Mutex
	client *genai.Client
}

// NewGemini creates a provider for the given model.
func NewGemini(apiKey, model string, maxTokens int) *Gemini {
	return &Gemini{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (g *Gemini) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

// Chat sends prompt as a single user turn and returns the response text.
func (g *Gemini) Chat(ctx context.Context, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		//nolint:gosec // bounded by configuration validation
		config.MaxOutputTokens = int32(g.maxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	return result.Text(), nil
}
