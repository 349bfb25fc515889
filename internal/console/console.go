// ABOUTME: Admin console draft: the whole content tree edited in memory
// ABOUTME: Tabs over top-level pages, content and style edits, one-shot publish

package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/overrides"
)

// Console errors
var (
	ErrUnknownTab      = errors.New("unknown tab")
	ErrUnknownSection  = errors.New("unknown section")
	ErrNotEditable     = errors.New("field is not editable")
	ErrNotStyled       = errors.New("section has no style editor")
	ErrUnknownStyleKey = errors.New("unknown style field")
	ErrInvalidFont     = errors.New("unknown font family")
	ErrInvalidColor    = errors.New("invalid color")
)

// User-visible messages.
const (
	PublishedMessage = "설정이 성공적으로 저장되었습니다. 홈페이지에 즉시 반영됩니다."
	StaleMessage     = "다른 곳에서 먼저 게시된 변경 사항이 있습니다. 새로 고침 후 다시 시도해 주십시오."
)

// Tab is one top-level page the console edits.
type Tab struct {
	ID    string
	Label string
}

var tabs = []Tab{
	{ID: "home", Label: "Home Page"},
	{ID: "services", Label: "Services"},
	{ID: "portfolio", Label: "Portfolio"},
	{ID: "pricing", Label: "Pricing"},
	{ID: "community", Label: "Community"},
	{ID: "contact", Label: "Contact"},
}

// Tabs returns the fixed tab list in display order.
func Tabs() []Tab {
	return slices.Clone(tabs)
}

// IsTab reports whether id names a console tab.
func IsTab(id string) bool {
	return slices.ContainsFunc(tabs, func(t Tab) bool { return t.ID == id })
}

// contentKeys are the section keys UpdateContent may touch.
var contentKeys = []string{content.KeyTitle, content.KeySubtitle, content.KeyContent, content.KeyImageURL}

// styleKeys are the style keys UpdateStyle may touch.
var styleKeys = []string{
	content.StyleFontSize,
	content.StyleColor,
	content.StyleFontFamily,
	content.StyleFontWeight,
	content.StyleLetterSpacing,
}

// Publisher is the store surface the console needs.
type Publisher interface {
	Snapshot(ctx context.Context) (content.Tree, int64)
	Save(ctx context.Context, tree content.Tree) (int64, error)
	SaveIfRevision(ctx context.Context, tree content.Tree, expected int64) (int64, error)
}

// Options configures a Console.
type Options struct {
	// RejectStale makes Publish fail with overrides.ErrStaleRevision when
	// the store was written after the draft was loaded.
	RejectStale bool
	Logger      *slog.Logger
}

// Console holds one operator's draft of the content tree.
type Console struct {
	mu       sync.Mutex
	store    Publisher
	draft    content.Tree
	revision int64
	seeded   bool
	dirty    bool
	opts     Options
	logger   *slog.Logger
}

// Open loads the persisted tree into a new draft. An empty tree is replaced
// by the built-in seed; the seed is not persisted until Publish.
func Open(ctx context.Context, store Publisher, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tree, rev := store.Snapshot(ctx)
	seeded := false
	if tree.Empty() {
		tree = content.Seed()
		seeded = true
	}

	return &Console{
		store:    store,
		draft:    tree,
		revision: rev,
		seeded:   seeded,
		opts:     opts,
		logger:   logger.With("component", "console"),
	}
}

// Seeded reports whether the draft came from the built-in seed.
func (c *Console) Seeded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seeded
}

// Dirty reports whether the draft has unpublished edits.
func (c *Console) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Draft returns a copy of the current draft.
func (c *Console) Draft() content.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// SectionView is one editable area of a tab.
type SectionView struct {
	Key  string
	Path string

	// Styled sections are PageSections and carry Section and Swatch.
	Styled  bool
	Section content.Section
	Swatch  string
	Ink     string

	// Leaves lists the string fields of an unstyled section, or the single
	// value when the entry is a bare string.
	Leaves []Leaf
}

// Leaf is one plain string field.
type Leaf struct {
	Key   string
	Path  string
	Value string
}

// Sections lists the sections of tab in display order.
func (c *Console) Sections(tab string) ([]SectionView, error) {
	if !IsTab(tab) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	page, ok := content.GetTree(c.draft, tab)
	if !ok {
		return nil, nil
	}

	views := make([]SectionView, 0, len(page))
	for _, key := range content.OrderedKeys(tab, page) {
		path := tab + content.Separator + key
		view := SectionView{Key: key, Path: path}

		switch v := page[key].(type) {
		case content.Tree:
			if s, ok := content.SectionFromTree(key, v); ok {
				view.Styled = true
				view.Section = s
				view.Swatch, _ = ParseColor(s.Styling.Color)
				if view.Swatch != "" {
					view.Ink = SwatchInk(view.Swatch)
				}
			} else {
				for _, leafKey := range content.OrderedKeys(path, v) {
					if s, ok := v[leafKey].(string); ok {
						view.Leaves = append(view.Leaves, Leaf{
							Key:   leafKey,
							Path:  path + content.Separator + leafKey,
							Value: s,
						})
					}
				}
			}
		case string:
			view.Leaves = []Leaf{{Key: key, Path: path, Value: v}}
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateContent edits a text field of a section in the draft only. On a
// styled section, title is always editable and subtitle, content, and
// imageUrl only when the section already has them. On an unstyled section
// any existing string field is editable.
func (c *Console) UpdateContent(tab, section, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, err := c.sectionLocked(tab, section)
	if err != nil {
		return err
	}

	if content.IsSection(node) {
		if !slices.Contains(contentKeys, key) {
			return fmt.Errorf("%w: %s", ErrNotEditable, key)
		}
		if _, present := node[key].(string); !present && key != content.KeyTitle {
			return fmt.Errorf("%w: %s is not present on %s.%s", ErrNotEditable, key, tab, section)
		}
	} else if _, present := node[key].(string); !present {
		return fmt.Errorf("%w: %s", ErrNotEditable, key)
	}

	node[key] = value
	c.dirty = true
	return nil
}

// UpdateStyle edits one style field of a PageSection in the draft and returns
// the section's swatch color after the edit.
func (c *Console) UpdateStyle(tab, section, key, value string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, err := c.sectionLocked(tab, section)
	if err != nil {
		return "", err
	}
	styling, ok := node[content.KeyStyling].(content.Tree)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrNotStyled, tab, section)
	}
	if !slices.Contains(styleKeys, key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownStyleKey, key)
	}

	switch key {
	case content.StyleFontFamily:
		if !content.FontFamily(value).Valid() {
			return "", fmt.Errorf("%w: %q", ErrInvalidFont, value)
		}
	case content.StyleColor:
		if _, err := ParseColor(value); err != nil {
			return "", err
		}
	}

	styling[key] = value
	c.dirty = true

	color, _ := styling[content.StyleColor].(string)
	swatch, _ := ParseColor(color)
	return swatch, nil
}

// sectionLocked returns the live draft node for tab.section.
func (c *Console) sectionLocked(tab, section string) (content.Tree, error) {
	if !IsTab(tab) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	node, ok := content.GetTree(c.draft, tab+content.Separator+section)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownSection, tab, section)
	}
	return node, nil
}

// Publish writes the whole draft to the store in one shot and returns the
// confirmation message. With RejectStale it refuses to overwrite a tree
// published after this draft was loaded.
func (c *Console) Publish(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree := c.draft.Clone()
	var (
		rev int64
		err error
	)
	if c.opts.RejectStale {
		rev, err = c.store.SaveIfRevision(ctx, tree, c.revision)
	} else {
		rev, err = c.store.Save(ctx, tree)
	}
	if err != nil {
		if errors.Is(err, overrides.ErrStaleRevision) {
			c.logger.Warn("publish rejected, draft is stale", "revision", c.revision)
			return StaleMessage, err
		}
		return "", fmt.Errorf("publishing: %w", err)
	}

	c.revision = rev
	c.seeded = false
	c.dirty = false
	c.logger.Info("content published", "revision", c.revision)
	return PublishedMessage, nil
}

// Revision returns the store revision the draft is based on.
func (c *Console) Revision() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// Reload discards the draft and loads the persisted tree again.
func (c *Console) Reload(ctx context.Context) {
	tree, rev := c.store.Snapshot(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seeded = false
	if tree.Empty() {
		tree = content.Seed()
		c.seeded = true
	}
	c.draft = tree
	c.revision = rev
	c.dirty = false
}
