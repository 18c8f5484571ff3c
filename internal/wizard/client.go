package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/raine/listing-wizard/internal/listing"
)

const (
	DefaultServerURL = "http://localhost:3000"
	// Longer than the server's provider timeout so its error reply arrives first
	defaultClientTimeout = 90 * time.Second
)

// APIError is a failure reply from the listing server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

type ClientOpts struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the listing server's generate endpoint.
type Client struct {
	httpClient *resty.Client
}

var _ Generator = (*Client)(nil)

func NewClient(opts ClientOpts) *Client {
	baseURL := DefaultServerURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	timeout := defaultClientTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	return &Client{
		httpClient: resty.New().
			SetDebug(false).
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

type generateRequest struct {
	Image string `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, image string) (*listing.Draft, error) {
	var draft listing.Draft
	var errBody errorResponse

	res, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(generateRequest{Image: image}).
		SetResult(&draft).
		SetError(&errBody).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	if res.IsError() {
		msg := errBody.Error
		if msg == "" {
			msg = "Failed to generate listing"
		}
		return nil, &APIError{StatusCode: res.StatusCode(), Message: msg}
	}

	return &draft, nil
}
