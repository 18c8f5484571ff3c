package listing

import (
	"context"
	"sync"
)

// MockCompleter is a test double for Completer.
// If CompleteFunc is nil, Complete returns a reply with a fixed valid draft.
// Thread-safe for use in concurrent tests.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string, image ImagePayload) (*Completion, error)

	mu    sync.Mutex
	calls []ImagePayload
}

var _ Completer = (*MockCompleter)(nil)

func (m *MockCompleter) Complete(ctx context.Context, prompt string, image ImagePayload) (*Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, image)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, image)
	}
	return &Completion{
		Text:  `{"title":"Mock Item","description":"Mock description","price":"10"}`,
		Model: "mock-model",
	}, nil
}

// CallCount returns the number of Complete invocations.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// ReplyWith returns a CompleteFunc that always replies with text.
func ReplyWith(text string) func(context.Context, string, ImagePayload) (*Completion, error) {
	return func(context.Context, string, ImagePayload) (*Completion, error) {
		return &Completion{Text: text, Model: "mock-model"}, nil
	}
}
