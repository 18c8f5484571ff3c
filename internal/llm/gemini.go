package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raine/listing-wizard/internal/listing"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Used when a data URI omits its MIME type
const fallbackImageMIMEType = "image/jpeg"

type GeminiOptions struct {
	APIKey    string
	BaseURL   string // Optional, defaults to the Gemini API
	Model     string
	MaxTokens int
	// Bounds for downloading remote image references
	FetchTimeout  time.Duration
	MaxImageBytes int64
}

// draftSchema constrains the reply to the three listing fields.
var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"price":       {Type: genai.TypeString},
	},
	Required:         []string{"title", "description", "price"},
	PropertyOrdering: []string{"title", "description", "price"},
}

// GeminiCompleter uses Google's Gemini API. Images are sent inline, so remote
// references are downloaded first.
type GeminiCompleter struct {
	client    *genai.Client
	fetcher   *ImageFetcher
	model     string
	maxTokens int32
}

func NewGeminiCompleter(ctx context.Context, opts GeminiOptions) (*GeminiCompleter, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	fetcher := NewImageFetcher()
	if opts.FetchTimeout > 0 {
		fetcher.WithTimeout(opts.FetchTimeout)
	}
	if opts.MaxImageBytes > 0 {
		fetcher.WithMaxSize(opts.MaxImageBytes)
	}

	g := &GeminiCompleter{
		client:    client,
		fetcher:   fetcher,
		model:     defaultGeminiModel,
		maxTokens: 300,
	}
	if opts.Model != "" {
		g.model = opts.Model
	}
	if opts.MaxTokens > 0 {
		g.maxTokens = int32(opts.MaxTokens)
	}
	return g, nil
}

// Complete implements listing.Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string, image listing.ImagePayload) (*listing.Completion, error) {
	imagePart, err := g.imagePart(ctx, image)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			imagePart,
		}, genai.RoleUser),
	}
	// Thinking tokens count against MaxOutputTokens
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  g.maxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   draftSchema,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](0),
		},
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	completion := &listing.Completion{Model: g.model}
	if len(result.Candidates) > 0 && result.Candidates[0].Content != nil && len(result.Candidates[0].Content.Parts) > 0 {
		completion.Text = result.Text()
	}
	if result.UsageMetadata != nil {
		completion.Usage = listing.Usage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
		completion.Usage.CostUSD = calculateCost(completion.Usage.InputTokens, completion.Usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}
	return completion, nil
}

func (g *GeminiCompleter) imagePart(ctx context.Context, image listing.ImagePayload) (*genai.Part, error) {
	if image.IsRemote() {
		data, mimeType, err := g.fetcher.Fetch(ctx, image.String())
		if err != nil {
			return nil, err
		}
		if mimeType == "" {
			mimeType = fallbackImageMIMEType
		}
		return genai.NewPartFromBytes(data, mimeType), nil
	}

	mimeType, data, err := image.Decode()
	if err != nil {
		return nil, fmt.Errorf("unsupported image reference: %w", err)
	}
	if mimeType == "" {
		mimeType = fallbackImageMIMEType
	}
	return genai.NewPartFromBytes(data, mimeType), nil
}
