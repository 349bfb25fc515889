// ABOUTME: Tests for attachment data URI encoding and markdown rendering
// ABOUTME: Covers malformed URIs and GFM table output

package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDataURIRoundTrip(t *testing.T) {
	img := &Image{Data: []byte("not really a jpeg"), MIMEType: "image/jpeg"}
	uri := img.DataURI()
	assert.Contains(t, uri, "data:image/jpeg;base64,")

	got, err := ImageFromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestImageFromDataURIRejectsMalformed(t *testing.T) {
	for _, uri := range []string{
		"",
		"https://example.com/a.png",
		"data:image/png;base64",
		"data:;base64,AAAA",
		"data:image/png,AAAA",
		"data:image/png;base64,!!!",
	} {
		_, err := ImageFromDataURI(uri)
		assert.ErrorIs(t, err, ErrInvalidDataURI, "uri %q", uri)
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("**직영가** 기준\n\n| 공정 | 단가 |\n|---|---|\n| 타일 | **12만원** |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>직영가</strong>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>12만원</strong>")
}

func TestRenderHTMLEscapesRawHTML(t *testing.T) {
	html, err := RenderHTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
