// ABOUTME: Chat transcript types and attachment encoding
// ABOUTME: Messages are value types; observers always get copies

package assistant

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Only the newest assistant message of an
// open stream changes after it is appended, and its Text only grows.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	Streaming bool      `json:"streaming"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrInvalidDataURI is returned when an attachment is not a base64 data URI.
var ErrInvalidDataURI = errors.New("invalid image data uri")

// Image is an attachment passed to the generator alongside the text.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI renders the image as a base64 data URI for previews.
func (img *Image) DataURI() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ImageFromDataURI parses a "data:<mime>;base64,<payload>" string.
func ImageFromDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return nil, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}
	return &Image{Data: data, MIMEType: mimeType}, nil
}
