package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/raine/listing-wizard/internal/listing"
)

const defaultOpenAIModel = "gpt-4o-2024-08-06"

type OpenAIOptions struct {
	APIKey    string
	BaseURL   string // Optional, defaults to the OpenAI API
	Model     string
	MaxTokens int
}

// OpenAICompleter sends the prompt and image as one user turn to the OpenAI
// chat completions API.
type OpenAICompleter struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAICompleter creates a completer. Requests are never retried.
func NewOpenAICompleter(opts OpenAIOptions) (*OpenAICompleter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	c := &OpenAICompleter{
		client:    openai.NewClient(reqOpts...),
		model:     defaultOpenAIModel,
		maxTokens: 300,
	}
	if opts.Model != "" {
		c.model = opts.Model
	}
	if opts.MaxTokens > 0 {
		c.maxTokens = int64(opts.MaxTokens)
	}
	return c, nil
}

// Complete implements listing.Completer. The image reference (data URI or
// URL) is passed to the API unchanged.
func (o *OpenAICompleter) Complete(ctx context.Context, prompt string, image listing.ImagePayload) (*listing.Completion, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(o.model),
		MaxTokens: openai.Int(o.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: image.String(),
				}),
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	completion := &listing.Completion{
		Model: resp.Model,
		Usage: listing.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
			CostUSD:      calculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, openaiInputPricePerMillion, openaiOutputPricePerMillion),
		},
	}
	if len(resp.Choices) > 0 {
		completion.Text = resp.Choices[0].Message.Content
	}
	return completion, nil
}
