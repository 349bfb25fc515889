// ABOUTME: Tests for dotted path addressing over content trees
// ABOUTME: Covers round-trips, sibling preservation, missing paths, and sibling derivation

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetThenGet_RoundTrip(t *testing.T) {
	paths := []string{
		"title",
		"home.hero.title",
		"home.hero.styling.color",
		"portfolio.value1.imageUrl",
		"Home.Hero.Title",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			tree := Tree{}
			require.NoError(t, Set(tree, p, "value for "+p))

			got, ok := GetString(tree, p)
			require.True(t, ok)
			assert.Equal(t, "value for "+p, got)
		})
	}
}

func TestSet_PreservesSiblings(t *testing.T) {
	tree := Tree{
		"home": Tree{
			"hero": Tree{
				"title":    "old",
				"subtitle": "keep me",
			},
			"manifesto": Tree{"title": "also keep"},
		},
		"brandName": "LuxRiel",
	}

	require.NoError(t, Set(tree, "home.hero.title", "new"))

	title, _ := GetString(tree, "home.hero.title")
	assert.Equal(t, "new", title)

	sub, _ := GetString(tree, "home.hero.subtitle")
	assert.Equal(t, "keep me", sub)

	manifesto, _ := GetString(tree, "home.manifesto.title")
	assert.Equal(t, "also keep", manifesto)

	brand, _ := GetString(tree, "brandName")
	assert.Equal(t, "LuxRiel", brand)
}

func TestSet_ReplacesIntermediateScalar(t *testing.T) {
	tree := Tree{"home": "flat"}

	require.NoError(t, Set(tree, "home.hero.title", "nested"))

	got, ok := GetString(tree, "home.hero.title")
	require.True(t, ok)
	assert.Equal(t, "nested", got)
}

func TestSet_StoresSubtreeCopy(t *testing.T) {
	style := Tree{"color": "#ffffff"}
	tree := Tree{}

	require.NoError(t, Set(tree, "home.hero.styling", style))
	style["color"] = "#000000"

	got, _ := GetString(tree, "home.hero.styling.color")
	assert.Equal(t, "#ffffff", got)
}

func TestSet_RejectsBadInput(t *testing.T) {
	tree := Tree{}

	assert.ErrorIs(t, Set(tree, "", "x"), ErrInvalidPath)
	assert.ErrorIs(t, Set(tree, "a..b", "x"), ErrInvalidPath)
	assert.ErrorIs(t, Set(tree, ".a", "x"), ErrInvalidPath)
	assert.ErrorIs(t, Set(tree, "a.", "x"), ErrInvalidPath)
	assert.ErrorIs(t, Set(tree, "a", 42), ErrInvalidValue)
	assert.ErrorIs(t, Set(tree, "a", []string{"x"}), ErrInvalidValue)
	assert.ErrorIs(t, Set(nil, "a", "x"), ErrNilTree)
	assert.True(t, tree.Empty())
}

func TestGet_MissingPathIsNotAnError(t *testing.T) {
	tree := Tree{
		"home": Tree{"hero": "not a mapping"},
	}

	cases := []string{
		"missing",
		"home.missing",
		"home.hero.title",
		"home.hero.title.deeper",
		"",
		"home..hero",
	}
	for _, p := range cases {
		_, ok := Get(tree, p)
		assert.False(t, ok, "path %q", p)
	}

	_, ok := Get(nil, "home")
	assert.False(t, ok)
}

func TestGetString_SubtreeIsNoOverride(t *testing.T) {
	tree := Tree{"home": Tree{"hero": Tree{"title": "x"}}}

	_, ok := GetString(tree, "home.hero")
	assert.False(t, ok)

	sub, ok := GetTree(tree, "home.hero")
	require.True(t, ok)
	assert.Equal(t, "x", sub["title"])
}

func TestDescriptionPath(t *testing.T) {
	p, ok := DescriptionPath("home.cognitive.imageUrl")
	require.True(t, ok)
	assert.Equal(t, "home.cognitive.description", p)

	_, ok = DescriptionPath("home.cognitive.title")
	assert.False(t, ok)

	_, ok = SiblingPath("a.b", "", ".c")
	assert.False(t, ok)
}

func TestSiblingPath_OnlyReplacesSuffix(t *testing.T) {
	p, ok := SiblingPath("a.imageUrl.b.imageUrl", ImageSuffix, DescriptionSuffix)
	require.True(t, ok)
	assert.Equal(t, "a.imageUrl.b.description", p)
}
