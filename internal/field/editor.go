// ABOUTME: Inline editors opened on authorized interaction with a field
// ABOUTME: Hold a transient buffer; commit writes through the store, discard drops it

package field

import (
	"context"
	"strings"
	"sync"

	"github.com/lavriel789-crypto/luxriel/internal/overrides"
)

// Activate opens an editor pre-filled with the current effective value.
// Returns ErrAuthRequired when the session has not passed the gate.
func (f Text) Activate(ctx context.Context, store Store, gate Unlocker, sessionID string) (*TextEditor, error) {
	if !gate.IsUnlocked(sessionID) {
		return nil, ErrAuthRequired
	}
	return &TextEditor{
		field: f,
		store: store,
		text:  f.Resolve(store.Load(ctx)),
	}, nil
}

// ActivateWithCredentials runs the gate challenge first when the session is
// still locked, then opens the editor.
func (f Text) ActivateWithCredentials(ctx context.Context, store Store, gate Unlocker, sessionID, id, password string) (*TextEditor, error) {
	if !gate.IsUnlocked(sessionID) && !gate.Challenge(sessionID, id, password) {
		return nil, ErrAuthRequired
	}
	return f.Activate(ctx, store, gate, sessionID)
}

// TextEditor buffers an edit to one text field.
type TextEditor struct {
	mu     sync.Mutex
	field  Text
	store  Store
	text   string
	closed bool
}

// Text returns the buffered text.
func (e *TextEditor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetText replaces the buffered text.
func (e *TextEditor) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// Commit writes the buffered text to the field's path and closes the editor.
func (e *TextEditor) Commit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}
	if err := e.store.SetField(ctx, e.field.Path, e.text); err != nil {
		return err
	}
	e.closed = true
	return nil
}

// Discard drops the buffer without touching the store.
func (e *TextEditor) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Activate opens an image editor showing the current source and caption.
func (f Image) Activate(ctx context.Context, store Store, gate Unlocker, sessionID string) (*ImageEditor, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if !gate.IsUnlocked(sessionID) {
		return nil, ErrAuthRequired
	}
	current := f.Resolve(store.Load(ctx))
	return &ImageEditor{
		field:   f,
		store:   store,
		current: current,
		caption: current.Caption,
	}, nil
}

// ActivateWithCredentials runs the gate challenge first when needed.
func (f Image) ActivateWithCredentials(ctx context.Context, store Store, gate Unlocker, sessionID, id, password string) (*ImageEditor, error) {
	if !gate.IsUnlocked(sessionID) && !gate.Challenge(sessionID, id, password) {
		return nil, ErrAuthRequired
	}
	return f.Activate(ctx, store, gate, sessionID)
}

// ImageEditor stages a replacement image and caption.
type ImageEditor struct {
	mu      sync.Mutex
	field   Image
	store   Store
	current ImageValue
	staged  string
	caption string
	closed  bool
}

// Current returns the value the editor was opened with.
func (e *ImageEditor) Current() ImageValue {
	return e.current
}

// Stage sets the replacement image. dataURI must be an image data URI.
func (e *ImageEditor) Stage(dataURI string) error {
	if !IsImageDataURI(dataURI) {
		return ErrInvalidPayload
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.staged = dataURI
	return nil
}

// SetCaption replaces the buffered caption.
func (e *ImageEditor) SetCaption(caption string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.caption = caption
}

// Pending returns what Commit would write.
func (e *ImageEditor) Pending() ImageValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingLocked()
}

func (e *ImageEditor) pendingLocked() ImageValue {
	src := e.staged
	if src == "" {
		src = e.current.Src
	}
	return ImageValue{Src: src, Caption: e.caption}
}

// Commit writes the image path and its caption sibling in one store write.
// Without a staged image the current source is written back, so a caption
// edit alone still pins the image.
func (e *ImageEditor) Commit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}

	captionPath, ok := e.field.CaptionPath()
	if !ok {
		return ErrNoCaptionPath
	}

	v := e.pendingLocked()
	err := e.store.SetFields(ctx,
		overrides.Field{Path: e.field.Path, Value: v.Src},
		overrides.Field{Path: captionPath, Value: v.Caption},
	)
	if err != nil {
		return err
	}
	e.closed = true
	return nil
}

// Discard drops the staged image and caption.
func (e *ImageEditor) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// IsImageDataURI reports whether s is a base64 data URI with an image type.
func IsImageDataURI(s string) bool {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return false
	}
	_, payload, ok := strings.Cut(rest, ";base64,")
	return ok && payload != ""
}
