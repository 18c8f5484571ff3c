package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/raine/listing-wizard/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testImage = "data:image/png;base64,AAAA"

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recordingNotifier) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notifications[len(r.notifications)-1]
}

func draftGenerator(d listing.Draft) GeneratorFunc {
	return func(ctx context.Context, image string) (*listing.Draft, error) {
		return &d, nil
	}
}

func TestWizard_GenerateSuccess(t *testing.T) {
	var gotImage string
	notifier := &recordingNotifier{}
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		gotImage = image
		return &listing.Draft{Title: "Vintage Lamp", Description: "A lamp from the 1970s", Price: "45"}, nil
	}), notifier)

	w.UploadImage(testImage)
	state, err := w.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testImage, gotImage)
	assert.Equal(t, "Vintage Lamp", state.Title)
	assert.Equal(t, "A lamp from the 1970s", state.Description)
	assert.Equal(t, "45", state.Price)
	assert.Equal(t, ModePreview, state.Mode)
	assert.False(t, state.Generating)
	assert.Equal(t, LevelSuccess, notifier.last().Level)
}

func TestWizard_GenerateWithoutImage(t *testing.T) {
	called := false
	notifier := &recordingNotifier{}
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		called = true
		return nil, nil
	}), notifier)

	_, err := w.Generate(context.Background())
	assert.True(t, errors.Is(err, listing.ErrNoImage))
	assert.False(t, called)
	assert.Equal(t, LevelError, notifier.last().Level)
	assert.Equal(t, "Please upload an image first.", notifier.last().Message)
}

func TestWizard_GenerateWithBlankImage(t *testing.T) {
	called := false
	notifier := &recordingNotifier{}
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		called = true
		return nil, nil
	}), notifier)
	w.UploadImage("  \n\t ")

	state, err := w.Generate(context.Background())
	assert.True(t, errors.Is(err, listing.ErrNoImage))
	assert.False(t, called)
	assert.False(t, state.Generating)
	assert.Equal(t, LevelError, notifier.last().Level)
}

func TestWizard_GenerateFailureLeavesStateUntouched(t *testing.T) {
	notifier := &recordingNotifier{}
	fail := false
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		if fail {
			return nil, &APIError{StatusCode: 500, Message: "Failed to parse AI response"}
		}
		return &listing.Draft{Title: "Lamp", Description: "Old", Price: "45"}, nil
	}), notifier)

	w.UploadImage(testImage)
	_, err := w.Generate(context.Background())
	require.NoError(t, err)
	w.Edit()
	w.Dispatch(Action{Type: SetPrice, Value: "40"})
	before := w.State()

	fail = true
	state, err := w.Generate(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, state)
	assert.Equal(t, before, w.State())
	assert.False(t, w.State().Generating)
	assert.Equal(t, Notification{Level: LevelError, Title: "Error", Message: "Failed to parse AI response"}, notifier.last())
}

func TestWizard_GenericFailureMessage(t *testing.T) {
	notifier := &recordingNotifier{}
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		return nil, errors.New("connection refused")
	}), notifier)

	w.UploadImage(testImage)
	_, err := w.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to generate listing. Please try again.", notifier.last().Message)
}

func TestWizard_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		close(started)
		<-release
		return &listing.Draft{Title: "Lamp"}, nil
	}), nil)
	w.UploadImage(testImage)

	done := make(chan error, 1)
	go func() {
		_, err := w.Generate(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, w.State().Generating)
	_, err := w.Generate(context.Background())
	assert.True(t, errors.Is(err, ErrGenerationInFlight))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, w.State().Generating)
	assert.Equal(t, "Lamp", w.State().Title)
}

func TestWizard_PanickingGeneratorReleasesFlag(t *testing.T) {
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		panic("boom")
	}), nil)
	w.UploadImage(testImage)

	_, err := w.Generate(context.Background())
	require.Error(t, err)
	assert.False(t, w.State().Generating)
}

func TestWizard_NilDraftIsFailure(t *testing.T) {
	w := New(GeneratorFunc(func(ctx context.Context, image string) (*listing.Draft, error) {
		return nil, nil
	}), nil)
	w.UploadImage(testImage)

	state, err := w.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, ModeForm, state.Mode)
}

func TestWizard_UploadImageResets(t *testing.T) {
	w := New(draftGenerator(listing.Draft{Title: "Lamp", Description: "Old", Price: "45"}), nil)
	w.UploadImage(testImage)
	_, err := w.Generate(context.Background())
	require.NoError(t, err)
	w.Edit()

	state := w.UploadImage("data:image/jpeg;base64,BBBB")
	assert.Equal(t, State{Image: "data:image/jpeg;base64,BBBB", Mode: ModeForm}, state)
}

func TestWizard_EditAndSave(t *testing.T) {
	w := New(draftGenerator(listing.Draft{Title: "Lamp", Description: "Old", Price: "45"}), nil)
	w.UploadImage(testImage)
	_, err := w.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ModeEditing, w.Edit().Mode)
	w.Dispatch(Action{Type: SetTitle, Value: "Brass Lamp"})
	state := w.SaveEdit()
	assert.Equal(t, ModePreview, state.Mode)
	assert.Equal(t, "Brass Lamp", state.Title)
	assert.Equal(t, "45", state.Price)
}
