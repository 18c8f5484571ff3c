package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/raine/listing-wizard/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImage = "data:image/png;base64,AAAA"

func chatCompletionResponse(content string) string {
	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     1000,
			"completion_tokens": 100,
			"total_tokens":      1100,
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenAICompleter) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewOpenAICompleter(OpenAIOptions{APIKey: "sk-test", BaseURL: ts.URL + "/"})
	require.NoError(t, err)
	return ts, c
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var got chatRequest
	var authHeader string
	_, c := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatCompletionResponse(`{"title":"Lamp","description":"Old","price":"10"}`))
	})

	completion, err := c.Complete(context.Background(), "describe", listing.NewImagePayload(testImage))
	require.NoError(t, err)

	assert.Equal(t, `{"title":"Lamp","description":"Old","price":"10"}`, completion.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", completion.Model)
	assert.Equal(t, int64(1000), completion.Usage.InputTokens)
	assert.Equal(t, int64(100), completion.Usage.OutputTokens)
	assert.InDelta(t, 0.0035, completion.Usage.CostUSD, 1e-9)

	assert.Equal(t, "Bearer sk-test", authHeader)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "text", got.Messages[0].Content[0].Type)
	assert.Equal(t, "describe", got.Messages[0].Content[0].Text)
	assert.Equal(t, "image_url", got.Messages[0].Content[1].Type)
	assert.Equal(t, testImage, got.Messages[0].Content[1].ImageURL.URL)
}

func TestOpenAICompleter_NoChoices(t *testing.T) {
	_, c := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`)
	})

	completion, err := c.Complete(context.Background(), "describe", listing.NewImagePayload(testImage))
	require.NoError(t, err)
	assert.Empty(t, completion.Text)
}

func TestOpenAICompleter_ProviderErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	_, c := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	_, err := c.Complete(context.Background(), "describe", listing.NewImagePayload(testImage))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAICompleter_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewOpenAICompleter(OpenAIOptions{APIKey: "sk-test", BaseURL: url + "/"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "describe", listing.NewImagePayload(testImage))
	assert.Error(t, err)
}

func TestNewOpenAICompleter_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAICompleter(OpenAIOptions{})
	assert.Error(t, err)
}

func TestOpenAICompleter_WithService(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		content  string
		wantKind listing.FailureKind
		wantErr  bool
	}{
		{
			name:    "fenced json",
			status:  http.StatusOK,
			content: "```json\n{\"title\":\"Vintage Lamp\",\"description\":\"A lamp from the 1970s\",\"price\":\"45\"}\n```",
		},
		{
			name:     "prose reply",
			status:   http.StatusOK,
			content:  "Sorry, I can't help with that.",
			wantKind: listing.FailureDecode,
			wantErr:  true,
		},
		{
			name:     "provider error",
			status:   http.StatusServiceUnavailable,
			wantKind: listing.FailureTransport,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					io.WriteString(w, chatCompletionResponse(tt.content))
				} else {
					io.WriteString(w, `{"error":{"message":"unavailable"}}`)
				}
			})

			draft, err := listing.NewService(c).Generate(context.Background(), listing.NewImagePayload(testImage))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, &listing.Draft{Title: "Vintage Lamp", Description: "A lamp from the 1970s", Price: "45"}, draft)
				return
			}
			assert.Nil(t, draft)
			kind, ok := listing.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}
