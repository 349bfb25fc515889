// ABOUTME: Dotted path addressing over content trees
// ABOUTME: Get/set with auto-created intermediates and sibling path derivation

package content

import (
	"errors"
	"strings"
)

// Path errors
var (
	ErrInvalidPath  = errors.New("invalid path")
	ErrInvalidValue = errors.New("invalid value")
	ErrNilTree      = errors.New("nil tree")
)

const (
	// Separator splits path segments.
	Separator = "."

	// ImageSuffix marks an image field path.
	ImageSuffix = ".imageUrl"

	// DescriptionSuffix marks the caption sibling of an image field.
	DescriptionSuffix = ".description"
)

// Split breaks a path into its segments. Empty paths and empty segments
// ("a..b", ".a", "a.") are rejected.
func Split(path string) ([]string, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	parts := strings.Split(path, Separator)
	for _, p := range parts {
		if p == "" {
			return nil, ErrInvalidPath
		}
	}
	return parts, nil
}

// Get resolves path against the tree. It returns ok=false when any segment is
// missing or an intermediate value is not a mapping. Malformed paths are
// treated the same as missing ones.
func Get(t Tree, path string) (any, bool) {
	parts, err := Split(path)
	if err != nil || t == nil {
		return nil, false
	}

	var cur any = t
	for _, part := range parts {
		node, ok := cur.(Tree)
		if !ok {
			return nil, false
		}
		cur, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString resolves path to a string leaf. A subtree at path counts as no
// override.
func GetString(t Tree, path string) (string, bool) {
	v, ok := Get(t, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetTree resolves path to a subtree.
func GetTree(t Tree, path string) (Tree, bool) {
	v, ok := Get(t, path)
	if !ok {
		return nil, false
	}
	sub, ok := v.(Tree)
	return sub, ok
}

// Set assigns value at path, creating intermediate mappings as needed. An
// intermediate string is replaced by a new mapping. Sibling keys are left
// untouched. value must be a string, a Tree, or a map[string]any.
func Set(t Tree, path string, value any) error {
	if t == nil {
		return ErrNilTree
	}
	parts, err := Split(path)
	if err != nil {
		return err
	}
	var nv any
	switch val := value.(type) {
	case string:
		nv = val
	case Tree:
		nv = val.Clone()
	case map[string]any:
		nv = normalize(val)
	default:
		return ErrInvalidValue
	}

	node := t
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(Tree)
		if !ok {
			next = Tree{}
			node[part] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = nv
	return nil
}

// SiblingPath replaces oldSuffix with newSuffix. ok is false when path does
// not end with oldSuffix, in which case no sibling exists.
func SiblingPath(path, oldSuffix, newSuffix string) (string, bool) {
	if oldSuffix == "" || !strings.HasSuffix(path, oldSuffix) {
		return "", false
	}
	return strings.TrimSuffix(path, oldSuffix) + newSuffix, true
}

// DescriptionPath derives the caption path for an image path ending in
// ".imageUrl".
func DescriptionPath(imagePath string) (string, bool) {
	return SiblingPath(imagePath, ImageSuffix, DescriptionSuffix)
}
