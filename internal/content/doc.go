// Package content models the site's content override tree.
//
// # Tree
//
// A Tree is a nested mapping from string keys to either strings or further
// Trees. Style descriptors are ordinary nested Trees of strings. No schema
// is enforced at this level: any dotted path may be read or written.
//
//	tree := content.Tree{}
//	_ = content.Set(tree, "home.hero.title", "LuxRiel")
//	title, ok := content.GetString(tree, "home.hero.title")
//
// # Paths
//
// Paths are dot-separated, case-sensitive segments. A missing path is not an
// error: Get reports ok=false and callers fall back to their own defaults.
//
// Image fields store their caption next to the image under a sibling path
// derived by suffix substitution:
//
//	home.cognitive.imageUrl     -> image source (URL or data URI)
//	home.cognitive.description  -> caption text
//
// Use DescriptionPath to derive the sibling; never store the caption under
// an unrelated key.
//
// # Sections
//
// Subtrees that carry a "styling" mapping are page sections (Section). Only
// those expose style fields to the admin console.
//
// # Seed
//
// Seed returns the built-in default tree covering every known page section.
// It is a fallback for the admin console and is never persisted unless an
// operator publishes it.
package content
