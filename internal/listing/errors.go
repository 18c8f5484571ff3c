package listing

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a generation failed. Callers key user-facing
// messages off it.
type FailureKind int

const (
	// FailureInput means the caller supplied no image. No provider call is made.
	FailureInput FailureKind = iota
	// FailureTransport means the provider round trip did not complete:
	// connectivity, non-success status or timeout.
	FailureTransport
	// FailureDecode means the provider replied but the reply could not be
	// normalized and decoded into a Draft.
	FailureDecode
)

func (k FailureKind) String() string {
	switch k {
	case FailureInput:
		return "input error"
	case FailureTransport:
		return "transport error"
	case FailureDecode:
		return "decode error"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

var (
	ErrNoImage         = errors.New("no image provided")
	ErrEmptyReply      = errors.New("reply has no text content")
	ErrMissingField    = errors.New("missing field")
	ErrUnexpectedField = errors.New("unexpected field")
	ErrFieldType       = errors.New("field is not a string")
)

// GenerationError is the only error type returned by Service.Generate.
type GenerationError struct {
	Kind FailureKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err if it wraps a GenerationError.
func KindOf(err error) (FailureKind, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind, true
	}
	return 0, false
}
