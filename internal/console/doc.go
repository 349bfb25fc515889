// Package console implements the admin console's tree editor.
//
// A Console is a private draft of the whole content tree. Opening it loads
// the persisted tree, or the built-in seed when nothing has been published.
// Every edit touches only the draft; Publish writes the entire draft to the
// override store in one call. There is no per-field persistence here.
//
// Sections are the children of each tab. Children that carry a styling
// mapping are PageSections and expose style fields (font size, color, font
// family, font weight, letter spacing). Other children expose their string
// fields as plain leaves with no style editor.
//
// Colors accept #rgb, #rrggbb, or a CSS named color and are reported back as
// a normalized #rrggbb swatch.
package console
