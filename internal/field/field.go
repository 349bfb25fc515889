// ABOUTME: Display fields bound to one content path with a compiled-in default
// ABOUTME: Resolves the effective value as override if present, else default

package field

import (
	"context"
	"errors"
	"fmt"

	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/overrides"
)

// Field errors
var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrEditorClosed   = errors.New("editor already committed or discarded")
	ErrNoCaptionPath  = errors.New("image path must end in " + content.ImageSuffix)
	ErrInvalidPayload = errors.New("staged image must be an image data URI")
)

// Reader loads snapshots of the content tree.
type Reader interface {
	Load(ctx context.Context) content.Tree
}

// Source is a Reader that also announces changes.
type Source interface {
	Reader
	Subscribe(ctx context.Context) (<-chan overrides.Change, string)
	Unsubscribe(subID string)
}

// Store is the read-write surface editors commit through.
type Store interface {
	Reader
	SetField(ctx context.Context, path string, value any) error
	SetFields(ctx context.Context, fields ...overrides.Field) error
}

// Unlocker is the editing gate.
type Unlocker interface {
	IsUnlocked(sessionID string) bool
	Challenge(sessionID, id, password string) bool
}

// Text is a text field bound to one path.
type Text struct {
	Path    string
	Default string
}

// Resolve returns the override at Path, or Default when there is none.
func (f Text) Resolve(tree content.Tree) string {
	if v, ok := content.GetString(tree, f.Path); ok {
		return v
	}
	return f.Default
}

// Image is an image field bound to a path ending in ".imageUrl". Its caption
// lives at the ".description" sibling.
type Image struct {
	Path           string
	DefaultSrc     string
	DefaultCaption string
}

// ImageValue is an image field's effective source and caption.
type ImageValue struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

// Validate reports whether the path has a derivable caption sibling.
func (f Image) Validate() error {
	if _, ok := f.CaptionPath(); !ok {
		return fmt.Errorf("%w: %q", ErrNoCaptionPath, f.Path)
	}
	if _, err := content.Split(f.Path); err != nil {
		return err
	}
	return nil
}

// CaptionPath derives the caption sibling of Path.
func (f Image) CaptionPath() (string, bool) {
	return content.DescriptionPath(f.Path)
}

// Resolve returns the effective source and caption.
func (f Image) Resolve(tree content.Tree) ImageValue {
	v := ImageValue{Src: f.DefaultSrc, Caption: f.DefaultCaption}
	if src, ok := content.GetString(tree, f.Path); ok {
		v.Src = src
	}
	if p, ok := f.CaptionPath(); ok {
		if caption, ok := content.GetString(tree, p); ok {
			v.Caption = caption
		}
	}
	return v
}
