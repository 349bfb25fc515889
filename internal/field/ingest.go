// ABOUTME: Converts one uploaded image file into a data URI
// ABOUTME: Accepts image/* only and rejects payloads above a size limit

package field

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxImageBytes bounds a single ingested image.
const DefaultMaxImageBytes = 5 << 20

// Ingestion errors
var (
	ErrNotImage      = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrEmptyImage    = errors.New("image is empty")
)

// IngestImage reads r and returns it as a base64 data URI. declaredType is
// the client's Content-Type for the file; when it is missing or generic the
// type is sniffed from the bytes. maxBytes <= 0 uses DefaultMaxImageBytes.
func IngestImage(r io.Reader, declaredType string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, maxBytes)
	}

	mediaType := ""
	if declaredType != "" {
		if mt, _, err := mime.ParseMediaType(declaredType); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mediaType)
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
