// ABOUTME: Inline editor API: session unlock and text/image field commits
// ABOUTME: Writes go through the override store, which notifies every open page

package site

import (
	"errors"
	"net/http"

	"github.com/lavriel789-crypto/luxriel/internal/auth"
	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/field"
)

type authResponse struct {
	Unlocked  bool   `json:"unlocked"`
	Message   string `json:"message,omitempty"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

// handleAuthStatus reports whether this browser session may edit, and hands
// out the CSRF token for subsequent writes.
func (s *Site) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	_, token := s.ensureCSRFToken(w, r)
	writeJSON(w, http.StatusOK, authResponse{
		Unlocked:  s.editorGate.IsUnlocked(sessionID(r)),
		CSRFToken: token,
	})
}

func (s *Site) handleAuthChallenge(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if !s.editorGate.Challenge(sid, r.FormValue("id"), r.FormValue("password")) {
		s.logger.Info("editor challenge failed", "session_id", sid)
		writeJSON(w, http.StatusUnauthorized, authResponse{Message: auth.EditorRejectedMessage})
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Unlocked: true})
}

type textFieldResponse struct {
	Path     string `json:"path"`
	Value    string `json:"value"`
	Revision int64  `json:"revision"`
}

// handleTextField commits one text edit. Credentials in the same request
// unlock the session first, mirroring the prompt-on-first-edit flow.
func (s *Site) handleTextField(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	if _, err := content.Split(path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := field.Text{Path: path}
	editor, err := f.ActivateWithCredentials(r.Context(), s.store, s.editorGate, sessionID(r), r.FormValue("id"), r.FormValue("password"))
	if err != nil {
		s.writeFieldError(w, err)
		return
	}

	editor.SetText(r.FormValue("text"))
	if err := editor.Commit(r.Context()); err != nil {
		s.writeFieldError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, textFieldResponse{
		Path:     path,
		Value:    editor.Text(),
		Revision: s.store.Revision(r.Context()),
	})
}

type imageFieldResponse struct {
	Path        string `json:"path"`
	CaptionPath string `json:"captionPath"`
	field.ImageValue
	Revision int64 `json:"revision"`
}

// handleImageField commits an image edit from a multipart form: an optional
// "image" file and an optional "caption" field.
func (s *Site) handleImageField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxBodyBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, field.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	f := imageField(r.FormValue("path"))
	editor, err := f.ActivateWithCredentials(r.Context(), s.store, s.editorGate, sessionID(r), r.FormValue("id"), r.FormValue("password"))
	if err != nil {
		s.writeFieldError(w, err)
		return
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// caption-only edit
	case err != nil:
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return
	default:
		defer file.Close()
		uri, err := field.IngestImage(file, header.Header.Get("Content-Type"), s.maxImageBytes)
		if err != nil {
			s.writeFieldError(w, err)
			return
		}
		if err := editor.Stage(uri); err != nil {
			s.writeFieldError(w, err)
			return
		}
	}

	if _, ok := r.MultipartForm.Value["caption"]; ok {
		editor.SetCaption(r.FormValue("caption"))
	}

	pending := editor.Pending()
	if err := editor.Commit(r.Context()); err != nil {
		s.writeFieldError(w, err)
		return
	}

	captionPath, _ := f.CaptionPath()
	writeJSON(w, http.StatusOK, imageFieldResponse{
		Path:        f.Path,
		CaptionPath: captionPath,
		ImageValue:  pending,
		Revision:    s.store.Revision(r.Context()),
	})
}

// writeFieldError maps editor errors to HTTP statuses.
func (s *Site) writeFieldError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, field.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, auth.EditorRejectedMessage)
	case errors.Is(err, field.ErrImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, field.ErrNotImage):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, field.ErrEmptyImage),
		errors.Is(err, field.ErrInvalidPayload),
		errors.Is(err, field.ErrNoCaptionPath),
		errors.Is(err, content.ErrInvalidPath),
		errors.Is(err, content.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("field commit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save the change")
	}
}

// maxBodyBytes bounds request bodies: one image plus form overhead.
func (s *Site) maxBodyBytes() int64 {
	return s.maxImageBytes + 1<<20
}
