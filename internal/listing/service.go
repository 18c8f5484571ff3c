package listing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single provider round trip.
const DefaultTimeout = 60 * time.Second

// Completer submits one multimodal prompt to a completion provider and waits
// for the complete reply.
type Completer interface {
	Complete(ctx context.Context, prompt string, image ImagePayload) (*Completion, error)
}

// Service turns an image into a listing draft. It holds no state between
// calls and is safe for concurrent use.
type Service struct {
	completer Completer
	prompt    string
	timeout   time.Duration
}

type Option func(*Service)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithPrompt(prompt string) Option {
	return func(s *Service) {
		if prompt != "" {
			s.prompt = prompt
		}
	}
}

func NewService(completer Completer, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		prompt:    DefaultPrompt,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate asks the provider for a title, description and price for image.
// Every returned error is a *GenerationError; a draft is returned only when
// the whole reply decoded.
func (s *Service) Generate(ctx context.Context, image ImagePayload) (*Draft, error) {
	if image.IsEmpty() {
		return nil, &GenerationError{Kind: FailureInput, Err: ErrNoImage}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := log.Ctx(ctx)
	start := time.Now()
	completion, err := s.completer.Complete(ctx, s.prompt, image)
	if err != nil {
		logger.Error().
			Err(err).
			Str("failure", FailureTransport.String()).
			Dur("elapsed", time.Since(start)).
			Msg("completion request failed")
		return nil, &GenerationError{Kind: FailureTransport, Err: err}
	}
	if completion == nil || completion.Text == "" {
		logger.Warn().
			Str("failure", FailureDecode.String()).
			Msg("completion reply has no text content")
		return nil, &GenerationError{Kind: FailureDecode, Err: ErrEmptyReply}
	}

	logger.Debug().Str("raw", completion.Text).Msg("completion reply")

	normalized := NormalizeReply(completion.Text)
	draft, err := DecodeDraft(normalized)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("failure", FailureDecode.String()).
			Str("raw", completion.Text).
			Str("normalized", normalized).
			Msg("failed to decode completion reply")
		return nil, &GenerationError{Kind: FailureDecode, Err: err}
	}

	logger.Info().
		Str("model", completion.Model).
		Int64("inputTokens", completion.Usage.InputTokens).
		Int64("outputTokens", completion.Usage.OutputTokens).
		Float64("costUSD", completion.Usage.CostUSD).
		Dur("elapsed", time.Since(start)).
		Msg("listing generated")

	return draft, nil
}
