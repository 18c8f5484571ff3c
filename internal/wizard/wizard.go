package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/raine/listing-wizard/internal/listing"
	"github.com/rs/zerolog/log"
)

var ErrGenerationInFlight = errors.New("generation already in progress")

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Notification is a non-blocking message for the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Generator turns an image data URI into a listing draft.
type Generator interface {
	Generate(ctx context.Context, image string) (*listing.Draft, error)
}

type GeneratorFunc func(ctx context.Context, image string) (*listing.Draft, error)

func (f GeneratorFunc) Generate(ctx context.Context, image string) (*listing.Draft, error) {
	return f(ctx, image)
}

// Wizard is one user's listing session. It allows a single generation at a
// time and is safe for concurrent use.
type Wizard struct {
	generator Generator
	notifier  Notifier

	mu    sync.Mutex
	state State
}

func New(generator Generator, notifier Notifier) *Wizard {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Wizard{generator: generator, notifier: notifier}
}

// State returns a snapshot of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Dispatch(a Action) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = Reduce(w.state, a)
	return w.state
}

// UploadImage replaces the photo and clears any previous listing.
func (w *Wizard) UploadImage(image string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Image = image
	w.state.Mode = ModeForm
	w.state = Reduce(w.state, Action{Type: Reset})
	return w.state
}

// Generate requests a listing for the uploaded photo. On success the fields
// are replaced and the preview is shown. On failure the state is left as it
// was and an error notification is sent.
func (w *Wizard) Generate(ctx context.Context) (State, error) {
	w.mu.Lock()
	if strings.TrimSpace(w.state.Image) == "" {
		state := w.state
		w.mu.Unlock()
		w.notifier.Notify(Notification{Level: LevelError, Title: "Error", Message: "Please upload an image first."})
		return state, listing.ErrNoImage
	}
	if w.state.Generating {
		state := w.state
		w.mu.Unlock()
		return state, ErrGenerationInFlight
	}
	w.state.Generating = true
	image := w.state.Image
	w.mu.Unlock()

	draft, err := w.callGenerator(ctx, image)

	w.mu.Lock()
	w.state.Generating = false
	if err == nil && draft != nil {
		w.state = Reduce(w.state, Action{Type: SetAll, Draft: draft})
		w.state.Mode = ModePreview
	}
	state := w.state
	w.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("listing generation failed")
		w.notifier.Notify(Notification{Level: LevelError, Title: "Error", Message: failureMessage(err)})
		return state, err
	}
	w.notifier.Notify(Notification{Level: LevelSuccess, Title: "Success", Message: "Listing generated successfully!"})
	return state, nil
}

// callGenerator converts a panicking generator into an error so the
// generating flag is always released.
func (w *Wizard) callGenerator(ctx context.Context, image string) (draft *listing.Draft, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("generator panicked")
			draft, err = nil, errors.New("generator panicked")
		}
	}()
	draft, err = w.generator.Generate(ctx, image)
	if err == nil && draft == nil {
		err = errors.New("generator returned no draft")
	}
	return draft, err
}

// Edit switches from the preview to the edit form.
func (w *Wizard) Edit() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Mode = ModeEditing
	return w.state
}

// SaveEdit returns from the edit form to the preview.
func (w *Wizard) SaveEdit() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Mode = ModePreview
	return w.state
}

func failureMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Failed to generate listing. Please try again."
}
