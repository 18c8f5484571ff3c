package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultFetchTimeout is the default timeout for image downloads
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxImageSize is the default maximum image size (10MB)
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// ImageFetcher downloads remote image references for providers that only
// accept inline image bytes.
type ImageFetcher struct {
	client  *resty.Client
	maxSize int64
}

func NewImageFetcher() *ImageFetcher {
	return &ImageFetcher{
		client:  resty.New().SetDebug(false).SetTimeout(DefaultFetchTimeout),
		maxSize: DefaultMaxImageSize,
	}
}

// WithTimeout sets a custom timeout for downloads.
func (f *ImageFetcher) WithTimeout(timeout time.Duration) *ImageFetcher {
	f.client.SetTimeout(timeout)
	return f
}

// WithMaxSize sets a custom maximum image size.
func (f *ImageFetcher) WithMaxSize(maxSize int64) *ImageFetcher {
	f.maxSize = maxSize
	return f
}

// Fetch downloads an image and returns its bytes and MIME type.
// The size limit is enforced while reading, so oversized bodies are never
// buffered in full.
func (f *ImageFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	log.Debug().Str("url", imageURL).Msg("downloading image")

	res, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.IsError() {
		return nil, "", fmt.Errorf("download failed: status %d", res.StatusCode())
	}

	contentType := res.Header().Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}

	if res.RawResponse.ContentLength > f.maxSize {
		return nil, "", fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", res.RawResponse.ContentLength, f.maxSize)
	}

	// Content-Length may be missing or wrong
	data, err := io.ReadAll(io.LimitReader(body, f.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, "", fmt.Errorf("image too large: exceeds limit of %d bytes", f.maxSize)
	}

	mimeType, _, _ := strings.Cut(contentType, ";")
	return data, strings.TrimSpace(mimeType), nil
}
