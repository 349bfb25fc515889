// ABOUTME: Renders assistant replies from markdown to HTML
// ABOUTME: GFM is enabled so tables and strikethrough render like the widget expects

package assistant

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in replies stays escaped; goldmark's unsafe mode is off.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts reply text to HTML.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
