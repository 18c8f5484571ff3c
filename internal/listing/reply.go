package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// fenceRe matches a code fence marker and its optional language tag.
var fenceRe = regexp.MustCompile("```[A-Za-z0-9_+-]*")

var draftFields = []string{"title", "description", "price"}

// NormalizeReply removes code fence markers wherever they appear in text and
// trims surrounding whitespace. Models wrap JSON in fences even when told not
// to, and they are not consistent about where.
func NormalizeReply(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
}

// DecodeDraft decodes a normalized reply into a Draft. The reply must be a
// single JSON object with exactly the keys title, description and price, each
// holding a string. Values are returned as-is.
func DecodeDraft(text string) (*Draft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyReply
	}

	dec := json.NewDecoder(strings.NewReader(text))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("invalid reply json: %w", err)
	}
	if fields == nil {
		return nil, errors.New("reply is not a json object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected content after reply object")
	}

	for key := range fields {
		if !isDraftField(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedField, key)
		}
	}

	values := make(map[string]string, len(draftFields))
	for _, key := range draftFields {
		raw, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '"' {
			return nil, fmt.Errorf("%w: %s", ErrFieldType, key)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFieldType, key)
		}
		values[key] = s
	}

	return &Draft{
		Title:       values["title"],
		Description: values["description"],
		Price:       values["price"],
	}, nil
}

func isDraftField(key string) bool {
	for _, f := range draftFields {
		if f == key {
			return true
		}
	}
	return false
}
