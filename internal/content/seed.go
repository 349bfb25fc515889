// ABOUTME: Built-in default content tree embedded as a commented JSON document
// ABOUTME: Used by the admin console when nothing has been published yet

package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/tidwall/jsonc"
)

//go:embed seed.jsonc
var seedDocument []byte

var parseSeed = sync.OnceValues(func() (Tree, error) {
	return Decode(jsonc.ToJSON(seedDocument))
})

// seedOrder maps every object path in the seed ("" for the root) to its
// keys in document order. Trees are maps, so this is the only record of
// display order.
var seedOrder = sync.OnceValues(func() (map[string][]string, error) {
	return childKeyOrder(jsonc.ToJSON(seedDocument))
})

// Seed returns a fresh copy of the default content tree.
func Seed() Tree {
	t, err := parseSeed()
	if err != nil {
		panic(fmt.Sprintf("content: malformed seed document: %v", err))
	}
	return t.Clone()
}

// OrderedKeys returns the keys of t, the subtree at path, in display order:
// keys known to the seed document first, in document order, then any
// others sorted.
func OrderedKeys(path string, t Tree) []string {
	order, _ := seedOrder()
	known := order[path]

	keys := make([]string, 0, len(t))
	for _, k := range known {
		if _, ok := t[k]; ok {
			keys = append(keys, k)
		}
	}
	for _, k := range t.Keys() {
		if !slices.Contains(known, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func childKeyOrder(doc []byte) (map[string][]string, error) {
	out := make(map[string][]string)
	if err := collectKeyOrder(doc, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// collectKeyOrder records the key order of the object in raw under path and
// recurses into every nested object.
func collectKeyOrder(raw []byte, path string, out map[string][]string) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		var child json.RawMessage
		if err := dec.Decode(&child); err != nil {
			return err
		}

		childPath := key
		if path != "" {
			childPath = path + Separator + key
		}
		out[path] = append(out[path], key)

		if len(child) > 0 && child[0] == '{' {
			if err := collectKeyOrder(child, childPath, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
