// ABOUTME: Admin console routes: password gate, tabbed draft editing, publish
// ABOUTME: Drafts live per browser session until published or idle

package site

import (
	"errors"
	"net/http"

	"github.com/lavriel789-crypto/luxriel/internal/auth"
	"github.com/lavriel789-crypto/luxriel/internal/console"
	"github.com/lavriel789-crypto/luxriel/internal/overrides"
)

type consoleLoginData struct {
	Title        string
	Error        string
	CSRFToken    string
	AssetVersion string
}

type consoleData struct {
	Title        string
	Tabs         []console.Tab
	ActiveTab    string
	Sections     []console.SectionView
	Seeded       bool
	Dirty        bool
	CSRFToken    string
	AssetVersion string
}

// requireConsole rejects console writes from sessions that have not passed
// the console gate.
func (s *Site) requireConsole(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.consoleGate.IsUnlocked(sessionID(r)) {
			writeError(w, http.StatusUnauthorized, auth.ConsoleRejectedMessage)
			return
		}
		next(w, r)
	}
}

func (s *Site) handleConsoleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.consoleGate.IsUnlocked(sessionID(r)) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	_, csrfToken := s.ensureCSRFToken(w, r)
	s.renderConsoleLogin(w, http.StatusOK, "", csrfToken)
}

// handleConsoleLogin checks the console password. On failure the form is
// shown again with the rejection message and an empty input.
func (s *Site) handleConsoleLogin(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if !s.consoleGate.Challenge(sid, r.FormValue("password")) {
		s.logger.Info("console challenge failed", "session_id", sid)
		_, csrfToken := s.ensureCSRFToken(w, r)
		s.renderConsoleLogin(w, http.StatusUnauthorized, auth.ConsoleRejectedMessage, csrfToken)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Site) renderConsoleLogin(w http.ResponseWriter, status int, errMsg, csrfToken string) {
	s.render(w, status, "console_login.html", consoleLoginData{
		Title:        "Admin",
		Error:        errMsg,
		CSRFToken:    csrfToken,
		AssetVersion: assetVersion(),
	})
}

func (s *Site) handleConsolePage(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	r, csrfToken := s.ensureCSRFToken(w, r)
	if !s.consoleGate.IsUnlocked(sid) {
		s.renderConsoleLogin(w, http.StatusOK, "", csrfToken)
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = console.Tabs()[0].ID
	}
	if !console.IsTab(tab) {
		http.NotFound(w, r)
		return
	}

	c := s.consoles.Open(r.Context(), sid)
	sections, err := c.Sections(tab)
	if err != nil {
		s.logger.Error("listing console sections", "tab", tab, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, http.StatusOK, "console.html", consoleData{
		Title:        "Admin",
		Tabs:         console.Tabs(),
		ActiveTab:    tab,
		Sections:     sections,
		Seeded:       c.Seeded(),
		Dirty:        c.Dirty(),
		CSRFToken:    csrfToken,
		AssetVersion: assetVersion(),
	})
}

type sectionUpdateResponse struct {
	Swatch string `json:"swatch,omitempty"`
	Ink    string `json:"ink,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// handleConsoleSection applies one draft edit. kind is "content" or "style".
func (s *Site) handleConsoleSection(w http.ResponseWriter, r *http.Request) {
	c := s.consoles.Open(r.Context(), sessionID(r))
	tab, section := r.PathValue("tab"), r.PathValue("section")
	key, value := r.FormValue("key"), r.FormValue("value")

	var resp sectionUpdateResponse
	var err error
	switch r.FormValue("kind") {
	case "content":
		err = c.UpdateContent(tab, section, key, value)
	case "style":
		resp.Swatch, err = c.UpdateStyle(tab, section, key, value)
		if err == nil && resp.Swatch != "" {
			resp.Ink = console.SwatchInk(resp.Swatch)
		}
	default:
		writeError(w, http.StatusBadRequest, "kind must be content or style")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, console.ErrUnknownTab), errors.Is(err, console.ErrUnknownSection):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, console.ErrNotEditable),
			errors.Is(err, console.ErrNotStyled),
			errors.Is(err, console.ErrUnknownStyleKey),
			errors.Is(err, console.ErrInvalidFont),
			errors.Is(err, console.ErrInvalidColor):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.logger.Error("console edit failed", "error", err)
			writeError(w, http.StatusInternalServerError, "could not apply the edit")
		}
		return
	}

	resp.Dirty = c.Dirty()
	writeJSON(w, http.StatusOK, resp)
}

type publishResponse struct {
	Message  string `json:"message"`
	Revision int64  `json:"revision,omitempty"`
}

func (s *Site) handleConsolePublish(w http.ResponseWriter, r *http.Request) {
	c := s.consoles.Open(r.Context(), sessionID(r))
	msg, err := c.Publish(r.Context())
	switch {
	case errors.Is(err, overrides.ErrStaleRevision):
		writeJSON(w, http.StatusConflict, publishResponse{Message: msg})
	case err != nil:
		s.logger.Error("publish failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not publish")
	default:
		// The next visit starts from the published tree.
		s.consoles.Discard(sessionID(r))
		writeJSON(w, http.StatusOK, publishResponse{Message: msg, Revision: c.Revision()})
	}
}

// handleConsoleReload drops the draft and loads the published tree again.
func (s *Site) handleConsoleReload(w http.ResponseWriter, r *http.Request) {
	s.consoles.Open(r.Context(), sessionID(r)).Reload(r.Context())
	tab := r.FormValue("tab")
	if !console.IsTab(tab) {
		tab = console.Tabs()[0].ID
	}
	http.Redirect(w, r, "/admin?tab="+tab, http.StatusSeeOther)
}
