package wizard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize matches the server's default limit.
const MaxImageSize = 10 * 1024 * 1024

var ErrEmptyImage = errors.New("image is empty")

// EncodeImage returns data as a base64 data URI. The MIME type is detected
// from the content, which must be an image.
func EncodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", len(data), MaxImageSize)
	}

	mimeType := mimetype.Detect(data).String()
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("not an image: %s", mimeType)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func EncodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return EncodeImage(data)
}
