// ABOUTME: Public page rendering with every visible string resolved through the override store
// ABOUTME: Effective value is the published override, falling back to the built-in seed

package site

import (
	"html/template"
	"net/http"

	"github.com/lavriel789-crypto/luxriel/internal/assistant"
	"github.com/lavriel789-crypto/luxriel/internal/console"
	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/field"
)

// pageRoutes maps URL segments to content tabs.
var pageRoutes = map[string]string{
	"":          "home",
	"services":  "services",
	"portfolio": "portfolio",
	"price":     "pricing",
	"community": "community",
	"contact":   "contact",
}

func pageHref(tab string) string {
	for seg, t := range pageRoutes {
		if t == tab {
			return "/" + seg
		}
	}
	return "/"
}

const unsplash = "https://images.unsplash.com/"

// pageImages are the editable images placed on each page.
var pageImages = map[string][]field.Image{
	"home": {
		{Path: "home.cognitive.imageUrl", DefaultSrc: unsplash + "photo-1550751827-4bd374c3f58b?auto=format&fit=crop&q=80", DefaultCaption: "Cognitive Analysis"},
	},
	"services": {
		{Path: "services.deep1.imageUrl", DefaultSrc: unsplash + "photo-1581094794329-c8112a89af12?auto=format&fit=crop&q=80", DefaultCaption: "AI design"},
		{Path: "services.deep2.imageUrl", DefaultSrc: unsplash + "photo-1581092160562-40aa08e78837?auto=format&fit=crop&q=80", DefaultCaption: "AI tech"},
		{Path: "services.deep3.imageUrl", DefaultSrc: unsplash + "photo-1581092918056-0c4c3acd3789?auto=format&fit=crop&q=80"},
		{Path: "services.deep4.imageUrl", DefaultSrc: unsplash + "photo-1581091226825-a6a2a5aee158?auto=format&fit=crop&q=80"},
	},
	"portfolio": {
		{Path: "portfolio.protocol.imageUrl", DefaultSrc: unsplash + "photo-1581094794329-c8112a89af12?auto=format&fit=crop&q=80"},
		{Path: "portfolio.value1.imageUrl", DefaultSrc: unsplash + "photo-1600585154340-be6161a56a0c?auto=format&fit=crop&q=80"},
		{Path: "portfolio.value2.imageUrl", DefaultSrc: unsplash + "photo-1600607687920-4e2a09cf159d?auto=format&fit=crop&q=80"},
	},
	"contact": {
		{Path: "contact.hqMap.imageUrl", DefaultSrc: unsplash + "photo-1486406146926-c627a92ad1ab?auto=format&fit=crop&q=80", DefaultCaption: "HQ"},
	},
}

// imageField returns the page image bound to path, carrying its defaults, or
// a bare field for paths no page places.
func imageField(path string) field.Image {
	for _, images := range pageImages {
		for _, img := range images {
			if img.Path == path {
				return img
			}
		}
	}
	return field.Image{Path: path}
}

type navItem struct {
	Href   string
	Label  string
	Active bool
}

type textView struct {
	Key   string
	Path  string
	Value string
}

type sectionView struct {
	Key    string
	Styled bool
	Font   string
	Style  content.Style
	Fields []textView
}

type imageView struct {
	Path        string
	CaptionPath string
	Src         string
	Caption     string
}

type pageData struct {
	Title        string
	Brand        string
	BrandSub     string
	Accent       string
	Tab          string
	Nav          []navItem
	Sections     []sectionView
	Images       []imageView
	Suggestions  []string
	Assistant    bool
	CSRFToken    string
	AssetVersion string
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	tab, ok := pageRoutes[r.PathValue("page")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	r, csrfToken := s.ensureCSRFToken(w, r)
	data := buildPage(tab, s.store.Load(r.Context()))
	data.CSRFToken = csrfToken
	data.Assistant = s.assistant != nil
	data.Suggestions = assistant.Suggestions()
	data.AssetVersion = assetVersion()

	s.render(w, http.StatusOK, "page.html", data)
}

// buildPage resolves every field of tab against the override tree, using
// the seed tree for defaults.
func buildPage(tab string, tree content.Tree) pageData {
	seed := content.Seed()
	text := func(path string) string {
		def, _ := content.GetString(seed, path)
		return field.Text{Path: path, Default: def}.Resolve(tree)
	}

	data := pageData{
		Brand:    text("brandName"),
		BrandSub: text("brandSubName"),
		Accent:   text("accentColor"),
		Tab:      tab,
	}
	data.Title = data.Brand + " " + data.BrandSub

	for _, t := range console.Tabs() {
		data.Nav = append(data.Nav, navItem{Href: pageHref(t.ID), Label: t.Label, Active: t.ID == tab})
	}

	page, _ := content.GetTree(seed, tab)
	for _, key := range content.OrderedKeys(tab, page) {
		path := tab + content.Separator + key
		node, ok := page[key].(content.Tree)
		if !ok {
			continue
		}

		view := sectionView{Key: key, Styled: content.IsSection(node)}
		if view.Styled {
			stylePath := path + content.Separator + content.KeyStyling + content.Separator
			view.Style = content.Style{
				FontSize:      text(stylePath + content.StyleFontSize),
				Color:         text(stylePath + content.StyleColor),
				FontFamily:    content.FontFamily(text(stylePath + content.StyleFontFamily)),
				FontWeight:    text(stylePath + content.StyleFontWeight),
				LetterSpacing: text(stylePath + content.StyleLetterSpacing),
			}
			if !view.Style.FontFamily.Valid() {
				view.Style.FontFamily = content.FontSerif
			}
			view.Font = string(view.Style.FontFamily)
			for _, k := range []string{content.KeyTitle, content.KeySubtitle, content.KeyContent} {
				if _, present := node[k]; present {
					p := path + content.Separator + k
					view.Fields = append(view.Fields, textView{Key: k, Path: p, Value: text(p)})
				}
			}
		} else {
			for _, k := range content.OrderedKeys(path, node) {
				p := path + content.Separator + k
				view.Fields = append(view.Fields, textView{Key: k, Path: p, Value: text(p)})
			}
		}
		data.Sections = append(data.Sections, view)
	}

	for _, img := range pageImages[tab] {
		v := img.Resolve(tree)
		captionPath, _ := img.CaptionPath()
		data.Images = append(data.Images, imageView{Path: img.Path, CaptionPath: captionPath, Src: v.Src, Caption: v.Caption})
	}

	return data
}

// render executes a page template inside the base layout
func (s *Site) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
	if err != nil {
		s.logger.Error("failed to parse template", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "page", page, "error", err)
	}
}
