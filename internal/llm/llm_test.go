package llm

import (
	"context"
	"testing"

	"github.com/raine/listing-wizard/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(context.Background(), config.Config{Provider: config.ProviderOpenAI, OpenAIAPIKey: "sk-test", MaxTokens: 120})
	require.NoError(t, err)
	openaiCompleter, ok := c.(*OpenAICompleter)
	require.True(t, ok)
	assert.Equal(t, int64(120), openaiCompleter.maxTokens)
	assert.Equal(t, defaultOpenAIModel, openaiCompleter.model)

	c, err = New(context.Background(), config.Config{Provider: config.ProviderGemini, GeminiAPIKey: "g-test", Model: "gemini-2.5-pro"})
	require.NoError(t, err)
	geminiCompleter, ok := c.(*GeminiCompleter)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-pro", geminiCompleter.model)

	_, err = New(context.Background(), config.Config{Provider: "other"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.Config{Provider: config.ProviderOpenAI})
	assert.Error(t, err)
}
