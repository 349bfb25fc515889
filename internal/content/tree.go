// ABOUTME: Tree type for the nested content override mapping
// ABOUTME: Handles JSON decode/encode with normalization, deep copy, and walking

package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Tree is a nested content mapping. Values are either string or Tree.
type Tree map[string]any

// Decode parses serialized JSON into a Tree. Values that are neither strings
// nor objects are normalized: numbers and booleans become their JSON text,
// null and arrays are dropped.
func Decode(data []byte) (Tree, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	if raw == nil {
		return Tree{}, nil
	}
	return normalize(raw), nil
}

// Encode serializes the tree as JSON.
func (t Tree) Encode() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(map[string]any(t))
	if err != nil {
		return nil, fmt.Errorf("encoding tree: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes with the same normalization as Decode.
func (t *Tree) UnmarshalJSON(data []byte) error {
	tree, err := Decode(data)
	if err != nil {
		return err
	}
	*t = tree
	return nil
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		switch val := v.(type) {
		case Tree:
			out[k] = val.Clone()
		default:
			out[k] = val
		}
	}
	return out
}

// Empty reports whether the tree has no entries.
func (t Tree) Empty() bool {
	return len(t) == 0
}

// Keys returns the tree's immediate keys in sorted order.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two trees hold the same data.
func Equal(a, b Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		switch at := av.(type) {
		case Tree:
			bt, ok := bv.(Tree)
			if !ok || !Equal(at, bt) {
				return false
			}
		case string:
			bs, ok := bv.(string)
			if !ok || at != bs {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// normalize converts decoded JSON into Tree values.
func normalize(m map[string]any) Tree {
	out := make(Tree, len(m))
	for k, v := range m {
		if nv, ok := normalizeValue(v); ok {
			out[k] = nv
		}
	}
	return out
}

func normalizeValue(v any) (any, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case Tree:
		return val.Clone(), true
	case map[string]any:
		return normalize(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return nil, false
	}
}
