// ABOUTME: Page section and style descriptor types for structured content
// ABOUTME: Converts between Tree subtrees and typed Section/Style values

package content

// FontFamily is the closed set of font families a section may use.
type FontFamily string

const (
	FontSerif       FontFamily = "serif"
	FontSans        FontFamily = "sans"
	FontFuturistic  FontFamily = "futuristic"
	FontLuxurySerif FontFamily = "luxury-serif"
)

// FontFamilies lists the allowed font families in display order.
func FontFamilies() []FontFamily {
	return []FontFamily{FontSerif, FontLuxurySerif, FontSans, FontFuturistic}
}

// Valid reports whether f is one of the known families.
func (f FontFamily) Valid() bool {
	switch f {
	case FontSerif, FontSans, FontFuturistic, FontLuxurySerif:
		return true
	}
	return false
}

// Label returns the human-readable name shown in the console.
func (f FontFamily) Label() string {
	switch f {
	case FontSerif:
		return "Classic Serif (Bodoni)"
	case FontLuxurySerif:
		return "Luxury Serif (Playfair)"
	case FontSans:
		return "Modern Sans (Noto)"
	case FontFuturistic:
		return "Futuristic (Orbitron)"
	}
	return string(f)
}

// Section field keys
const (
	KeyID       = "id"
	KeyTitle    = "title"
	KeySubtitle = "subtitle"
	KeyContent  = "content"
	KeyImageURL = "imageUrl"
	KeyStyling  = "styling"
)

// Style field keys
const (
	StyleFontSize      = "fontSize"
	StyleColor         = "color"
	StyleFontFamily    = "fontFamily"
	StyleFontWeight    = "fontWeight"
	StyleLetterSpacing = "letterSpacing"
)

// Style describes how a page section's text is rendered.
type Style struct {
	FontSize      string
	Color         string
	FontFamily    FontFamily
	FontWeight    string
	LetterSpacing string
}

// Section is a structured page area edited as a unit by the admin console.
// Optional fields are nil when the subtree does not carry them.
type Section struct {
	ID       string
	Title    string
	Subtitle *string
	Content  *string
	ImageURL *string
	Styling  Style
}

// IsSection reports whether a subtree is structured as a page section.
func IsSection(t Tree) bool {
	_, ok := t[KeyStyling].(Tree)
	return ok
}

// SectionFromTree reads a Section out of a subtree. ok is false when the
// subtree has no styling mapping. key is used as the ID when the subtree has
// none of its own.
func SectionFromTree(key string, t Tree) (Section, bool) {
	styling, ok := t[KeyStyling].(Tree)
	if !ok {
		return Section{}, false
	}

	s := Section{
		ID:       stringOr(t, KeyID, key),
		Title:    stringOr(t, KeyTitle, ""),
		Subtitle: optString(t, KeySubtitle),
		Content:  optString(t, KeyContent),
		ImageURL: optString(t, KeyImageURL),
		Styling: Style{
			FontSize:      stringOr(styling, StyleFontSize, ""),
			Color:         stringOr(styling, StyleColor, ""),
			FontFamily:    FontFamily(stringOr(styling, StyleFontFamily, string(FontSerif))),
			FontWeight:    stringOr(styling, StyleFontWeight, ""),
			LetterSpacing: stringOr(styling, StyleLetterSpacing, ""),
		},
	}
	return s, true
}

// Tree converts the section back into a subtree.
func (s Section) Tree() Tree {
	t := Tree{
		KeyID:    s.ID,
		KeyTitle: s.Title,
		KeyStyling: Tree{
			StyleFontSize:      s.Styling.FontSize,
			StyleColor:         s.Styling.Color,
			StyleFontFamily:    string(s.Styling.FontFamily),
			StyleFontWeight:    s.Styling.FontWeight,
			StyleLetterSpacing: s.Styling.LetterSpacing,
		},
	}
	if s.Subtitle != nil {
		t[KeySubtitle] = *s.Subtitle
	}
	if s.Content != nil {
		t[KeyContent] = *s.Content
	}
	if s.ImageURL != nil {
		t[KeyImageURL] = *s.ImageURL
	}
	return t
}

func stringOr(t Tree, key, fallback string) string {
	if v, ok := t[key].(string); ok {
		return v
	}
	return fallback
}

func optString(t Tree, key string) *string {
	v, ok := t[key].(string)
	if !ok {
		return nil
	}
	return &v
}
