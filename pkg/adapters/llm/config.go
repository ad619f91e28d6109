package llm

import (
	"errors"
	"fmt"

	"github.com/aretw0/aacflow/pkg/adapters/memory"
	"github.com/aretw0/aacflow/pkg/ports"
)

// Provider kinds accepted by New.
const (
	KindOpenAI    = "openai"
	KindGemini    = "gemini"
	KindAnthropic = "anthropic"
	KindOllama    = "ollama"
	KindScripted  = "scripted"
)

// ErrUnknownKind is returned by New for an unsupported provider kind.
var ErrUnknownKind = errors.New("unknown provider kind")

// Config describes one provider.
type Config struct {
	Kind      string   `mapstructure:"kind" yaml:"kind"`
	Model     string   `mapstructure:"model" yaml:"model"`
	APIKey    string   `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string   `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens int      `mapstructure:"max_tokens" yaml:"max_tokens"`
	RateLimit float64  `mapstructure:"rate_limit" yaml:"rate_limit"` // calls per second, 0 disables
	Burst     int      `mapstructure:"burst" yaml:"burst"`
	Replies   []string `mapstructure:"replies" yaml:"replies"` // scripted kind only
}

// Validate checks the fields required by the configured kind.
func (c Config) Validate() error {
	switch c.Kind {
	case KindOpenAI, KindGemini, KindAnthropic:
		if c.APIKey == "" {
			return fmt.Errorf("%s provider requires an api key", c.Kind)
		}
		if c.Model == "" {
			return fmt.Errorf("%s provider requires a model", c.Kind)
		}
	case KindOllama:
		if c.Model == "" {
			return fmt.Errorf("ollama provider requires a model")
		}
	case KindScripted:
		if len(c.Replies) == 0 {
			return fmt.Errorf("scripted provider requires at least one reply")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// New builds the provider described by cfg, wrapped in a rate limiter when configured.
func New(cfg Config) (ports.ChatProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var p ports.ChatProvider
	switch cfg.Kind {
	case KindOpenAI:
		p = NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	case KindGemini:
		p = NewGemini(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case KindAnthropic:
		p = NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	case KindOllama:
		o, err := NewOllama(cfg.BaseURL, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		p = o
	case KindScripted:
		p = memory.NewScriptedProvider(cfg.Replies...).Cycle()
	}

	if cfg.RateLimit > 0 {
		p = NewRateLimited(p, cfg.RateLimit, cfg.Burst)
	}
	return p, nil
}
