package listing

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errInvalidDataURI = errors.New("invalid image data uri")

// ImagePayload is a transportable image reference supplied by the caller,
// typically a data URI such as "data:image/png;base64,...". It is consumed by
// exactly one generation and never persisted.
type ImagePayload struct {
	ref string
}

func NewImagePayload(ref string) ImagePayload {
	return ImagePayload{ref: ref}
}

func (p ImagePayload) String() string {
	return p.ref
}

func (p ImagePayload) IsEmpty() bool {
	return strings.TrimSpace(p.ref) == ""
}

// IsRemote reports whether the payload references an image over http(s).
func (p ImagePayload) IsRemote() bool {
	return strings.HasPrefix(p.ref, "http://") || strings.HasPrefix(p.ref, "https://")
}

func (p ImagePayload) IsDataURI() bool {
	return strings.HasPrefix(p.ref, "data:")
}

// Decode returns the MIME type and raw bytes embedded in a base64 data URI.
// The MIME type is empty when the data URI omits it.
func (p ImagePayload) Decode() (string, []byte, error) {
	if !p.IsDataURI() {
		return "", nil, errInvalidDataURI
	}
	header, body, ok := strings.Cut(strings.TrimPrefix(p.ref, "data:"), ",")
	if !ok {
		return "", nil, errInvalidDataURI
	}

	params := strings.Split(header, ";")
	if params[len(params)-1] != "base64" {
		return "", nil, errInvalidDataURI
	}
	mimeType := strings.TrimSpace(params[0])
	if mimeType == "base64" {
		mimeType = ""
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		// Some encoders drop the padding
		data, err = base64.RawStdEncoding.DecodeString(body)
		if err != nil {
			return "", nil, errInvalidDataURI
		}
	}
	return mimeType, data, nil
}
