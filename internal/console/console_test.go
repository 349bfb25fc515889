// ABOUTME: Tests for the admin console draft editor
// ABOUTME: Covers seeding, tab navigation, content/style validation, and publish

package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/overrides"
	"github.com/lavriel789-crypto/luxriel/internal/store"
)

func newStore(t *testing.T) (*overrides.Store, *store.MockStore) {
	t.Helper()
	kv := store.NewMockStore()
	s := overrides.New(kv, nil)
	t.Cleanup(s.Close)
	return s, kv
}

func TestOpen_SeedsEmptyTreeWithoutWriting(t *testing.T) {
	s, kv := newStore(t)

	c := Open(t.Context(), s, Options{})

	assert.True(t, c.Seeded())
	assert.False(t, c.Dirty())
	assert.True(t, content.Equal(content.Seed(), c.Draft()))
	assert.Equal(t, 0, kv.Writes(), "seed must not be written back on open")
}

func TestOpen_UsesPersistedTree(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SetField(t.Context(), "home.hero.title", "Persisted"))

	c := Open(t.Context(), s, Options{})

	assert.False(t, c.Seeded())
	title, _ := content.GetString(c.Draft(), "home.hero.title")
	assert.Equal(t, "Persisted", title)
	_, ok := content.Get(c.Draft(), "home.manifesto")
	assert.False(t, ok, "a non-empty tree is not merged with the seed")
}

func TestPublish_Scenario(t *testing.T) {
	s, kv := newStore(t)
	ctx := t.Context()
	c := Open(ctx, s, Options{})

	require.NoError(t, c.UpdateContent("home", "hero", "title", "Edited Hero"))

	// Navigate through other tabs.
	for _, tab := range Tabs() {
		_, err := c.Sections(tab.ID)
		require.NoError(t, err)
	}
	home, err := c.Sections("home")
	require.NoError(t, err)
	require.NotEmpty(t, home)
	assert.Equal(t, "Edited Hero", home[0].Section.Title)
	assert.Equal(t, 0, kv.Writes(), "edits stay in the draft")

	msg, err := c.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, PublishedMessage, msg)
	assert.False(t, c.Seeded())
	assert.False(t, c.Dirty())

	persisted := s.Load(ctx)
	title, _ := content.GetString(persisted, "home.hero.title")
	assert.Equal(t, "Edited Hero", title)

	phone, ok := content.GetString(persisted, "contact.info.phone")
	require.True(t, ok, "untouched sections are published too")
	assert.Equal(t, "02-1234-5678", phone)
	pricing, _ := content.GetString(persisted, "pricing.header.title")
	assert.Equal(t, "거품 없는 AI 견적", pricing)
}

func TestTabs(t *testing.T) {
	var ids []string
	for _, tab := range Tabs() {
		ids = append(ids, tab.ID)
	}
	assert.Equal(t, []string{"home", "services", "portfolio", "pricing", "community", "contact"}, ids)
	assert.False(t, IsTab("admin"))
}

func TestSections_OrderAndKinds(t *testing.T) {
	s, _ := newStore(t)
	c := Open(t.Context(), s, Options{})

	home, err := c.Sections("home")
	require.NoError(t, err)
	var keys []string
	for _, v := range home {
		keys = append(keys, v.Key)
		assert.True(t, v.Styled)
	}
	assert.Equal(t, []string{"hero", "manifesto", "engine"}, keys)
	assert.Equal(t, "#ffffff", home[0].Swatch)
	assert.Equal(t, "#000000", home[0].Ink)

	contact, err := c.Sections("contact")
	require.NoError(t, err)
	require.Len(t, contact, 2)
	assert.True(t, contact[0].Styled)
	info := contact[1]
	assert.False(t, info.Styled)
	assert.Equal(t, "contact.info", info.Path)
	require.Len(t, info.Leaves, 3)
	assert.Equal(t, Leaf{Key: "phone", Path: "contact.info.phone", Value: "02-1234-5678"}, info.Leaves[0])

	_, err = c.Sections("nope")
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestUpdateContent_Rules(t *testing.T) {
	s, _ := newStore(t)
	c := Open(t.Context(), s, Options{})

	assert.NoError(t, c.UpdateContent("home", "hero", "subtitle", "new sub"))
	assert.ErrorIs(t, c.UpdateContent("home", "hero", "imageUrl", "https://x"), ErrNotEditable,
		"optional keys are editable only when present")
	assert.ErrorIs(t, c.UpdateContent("home", "hero", "styling", "x"), ErrNotEditable)
	assert.ErrorIs(t, c.UpdateContent("home", "nope", "title", "x"), ErrUnknownSection)
	assert.ErrorIs(t, c.UpdateContent("nope", "hero", "title", "x"), ErrUnknownTab)

	assert.NoError(t, c.UpdateContent("contact", "info", "phone", "02-0000-0000"))
	assert.ErrorIs(t, c.UpdateContent("contact", "info", "fax", "x"), ErrNotEditable)

	phone, _ := content.GetString(c.Draft(), "contact.info.phone")
	assert.Equal(t, "02-0000-0000", phone)
	assert.True(t, c.Dirty())
}

func TestUpdateStyle_Validation(t *testing.T) {
	s, _ := newStore(t)
	c := Open(t.Context(), s, Options{})

	swatch, err := c.UpdateStyle("home", "hero", "color", "#D4AF37")
	require.NoError(t, err)
	assert.Equal(t, "#d4af37", swatch)

	swatch, err = c.UpdateStyle("home", "hero", "fontFamily", "futuristic")
	require.NoError(t, err)
	assert.Equal(t, "#d4af37", swatch)

	_, err = c.UpdateStyle("home", "hero", "fontFamily", "comic-sans")
	assert.ErrorIs(t, err, ErrInvalidFont)
	_, err = c.UpdateStyle("home", "hero", "color", "not-a-color")
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = c.UpdateStyle("home", "hero", "textShadow", "1px")
	assert.ErrorIs(t, err, ErrUnknownStyleKey)
	_, err = c.UpdateStyle("contact", "info", "color", "red")
	assert.ErrorIs(t, err, ErrNotStyled)

	views, _ := c.Sections("home")
	assert.Equal(t, content.FontFuturistic, views[0].Section.Styling.FontFamily)
	assert.Equal(t, "#D4AF37", views[0].Section.Styling.Color, "the operator's spelling is kept")
}

func TestPublish_RejectStale(t *testing.T) {
	s, _ := newStore(t)
	ctx := t.Context()

	c := Open(ctx, s, Options{RejectStale: true})
	require.NoError(t, c.UpdateContent("home", "hero", "title", "Mine"))

	require.NoError(t, s.SetField(ctx, "home.hero.title", "Inline edit"))

	msg, err := c.Publish(ctx)
	assert.ErrorIs(t, err, overrides.ErrStaleRevision)
	assert.Equal(t, StaleMessage, msg)

	title, _ := content.GetString(s.Load(ctx), "home.hero.title")
	assert.Equal(t, "Inline edit", title)

	c.Reload(ctx)
	require.NoError(t, c.UpdateContent("home", "hero", "title", "Mine again"))
	_, err = c.Publish(ctx)
	require.NoError(t, err)
}

// racingPublisher lets another writer land right after each publish write.
type racingPublisher struct {
	*overrides.Store
	after func(ctx context.Context)
}

func (p *racingPublisher) Save(ctx context.Context, tree content.Tree) (int64, error) {
	rev, err := p.Store.Save(ctx, tree)
	p.after(ctx)
	return rev, err
}

func (p *racingPublisher) SaveIfRevision(ctx context.Context, tree content.Tree, expected int64) (int64, error) {
	rev, err := p.Store.SaveIfRevision(ctx, tree, expected)
	p.after(ctx)
	return rev, err
}

func TestPublish_KeepsRevisionItWrote(t *testing.T) {
	s, _ := newStore(t)
	ctx := t.Context()

	pub := &racingPublisher{Store: s, after: func(ctx context.Context) {
		require.NoError(t, s.SetField(ctx, "home.hero.title", "Inline edit"))
	}}
	c := Open(ctx, pub, Options{RejectStale: true})
	require.NoError(t, c.UpdateContent("home", "hero", "title", "First"))

	_, err := c.Publish(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Revision())

	// The inline edit landed after the publish, so the draft is stale.
	pub.after = func(context.Context) {}
	require.NoError(t, c.UpdateContent("home", "hero", "title", "Second"))
	_, err = c.Publish(ctx)
	assert.ErrorIs(t, err, overrides.ErrStaleRevision)

	title, _ := content.GetString(s.Load(ctx), "home.hero.title")
	assert.Equal(t, "Inline edit", title)
}

func TestPublish_LastWriterWinsByDefault(t *testing.T) {
	s, _ := newStore(t)
	ctx := t.Context()

	c := Open(ctx, s, Options{})
	require.NoError(t, s.SetField(ctx, "home.hero.title", "Inline edit"))

	_, err := c.Publish(ctx)
	require.NoError(t, err)

	title, _ := content.GetString(s.Load(ctx), "home.hero.title")
	assert.Equal(t, "LuxRiel\nTerua", title)
}

func TestRegistry_KeepsDraftPerSession(t *testing.T) {
	s, _ := newStore(t)
	r := NewRegistry(s, Options{}, time.Hour)
	defer r.Close()

	a := r.Open(t.Context(), "a")
	require.NoError(t, a.UpdateContent("home", "hero", "title", "A's draft"))

	assert.Same(t, a, r.Open(t.Context(), "a"))
	b := r.Open(t.Context(), "b")
	title, _ := content.GetString(b.Draft(), "home.hero.title")
	assert.Equal(t, "LuxRiel\nTerua", title)

	r.Discard("a")
	assert.NotSame(t, a, r.Open(t.Context(), "a"))
}

func TestParseColor(t *testing.T) {
	cases := map[string]string{
		"#fff":          "#ffffff",
		"#D4AF37":       "#d4af37",
		" gold ":        "#ffd700",
		"RebeccaPurple": "#663399",
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "#ff", "#fffffff", "#gggggg", "ffffff", "blurple"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
