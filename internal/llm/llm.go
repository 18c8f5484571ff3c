// Package llm contains the completion providers that turn a prompt and an
// item photo into free text.
package llm

import (
	"context"
	"fmt"

	"github.com/raine/listing-wizard/config"
	"github.com/raine/listing-wizard/internal/listing"
)

// New creates the completer for the configured provider.
func New(ctx context.Context, cfg config.Config) (listing.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		c, err := NewOpenAICompleter(OpenAIOptions{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := NewGeminiCompleter(ctx, GeminiOptions{
			APIKey:        cfg.GeminiAPIKey,
			Model:         cfg.Model,
			MaxTokens:     cfg.MaxTokens,
			FetchTimeout:  cfg.Timeout,
			MaxImageBytes: cfg.MaxImageBytes,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
