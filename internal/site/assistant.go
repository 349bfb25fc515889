// ABOUTME: Chat widget routes: send a turn, read the transcript, stream updates
// ABOUTME: Replies are rendered from markdown to HTML before leaving the server

package site

import (
	"errors"
	"net/http"
	"time"

	"github.com/lavriel789-crypto/luxriel/internal/assistant"
	"github.com/lavriel789-crypto/luxriel/internal/field"
)

// messageView is a transcript message plus its rendered HTML.
type messageView struct {
	assistant.Message
	HTML string `json:"html,omitempty"`
}

type transcriptResponse struct {
	Messages []messageView `json:"messages"`
	Typing   bool          `json:"typing"`
	State    string        `json:"state"`
	Started  bool          `json:"started"`
}

type streamEvent struct {
	Type    assistant.EventType `json:"type"`
	Message *messageView        `json:"message,omitempty"`
	Typing  bool                `json:"typing"`
}

func (s *Site) requireAssistant(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.assistant == nil {
			writeError(w, http.StatusServiceUnavailable, "assistant disabled")
			return
		}
		next(w, r)
	}
}

func (s *Site) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": assistant.Suggestions()})
}

// handleTranscript reads the session's transcript without starting one.
func (s *Site) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.assistant.Lookup(sessionID(r))
	if !ok {
		writeJSON(w, http.StatusOK, transcriptResponse{
			Messages: []messageView{},
			State:    assistant.StateIdle.String(),
		})
		return
	}
	writeJSON(w, http.StatusOK, s.transcript(sess))
}

// handleAssistantSend submits one turn and blocks until the reply finishes.
// Leaving the page cancels the request context, which stops generation.
func (s *Site) handleAssistantSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxBodyBytes()); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, field.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	sess := s.assistant.Session(sessionID(r))

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		uri, err := field.IngestImage(file, header.Header.Get("Content-Type"), s.maxImageBytes)
		if err != nil {
			s.writeFieldError(w, err)
			return
		}
		img, err := assistant.ImageFromDataURI(uri)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sess.Attach(img)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	if err := sess.Send(r.Context(), r.FormValue("text")); err != nil {
		s.logger.Debug("assistant send cancelled", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, s.transcript(sess))
}

// handleAssistantStream forwards session events as SSE. The first event is
// the full transcript so a reconnecting widget can redraw.
func (s *Site) handleAssistantStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startSSE(w)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sess := s.assistant.Session(sessionID(r))
	events, subID := sess.Subscribe(r.Context())
	defer sess.Unsubscribe(subID)

	if err := writeEvent(w, flusher, "transcript", s.transcript(sess)); err != nil {
		s.logger.Error("failed to encode transcript", "error", err)
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case ev, ok := <-events:
			if !ok {
				return
			}
			out := streamEvent{Type: ev.Type, Typing: ev.Typing}
			if ev.Message != nil {
				v := s.view(*ev.Message)
				out.Message = &v
			}
			if err := writeEvent(w, flusher, string(ev.Type), out); err != nil {
				s.logger.Error("failed to encode chat event", "error", err)
			}
		}
	}
}

func (s *Site) transcript(sess *assistant.Session) transcriptResponse {
	msgs := sess.Transcript()
	views := make([]messageView, len(msgs))
	for i, m := range msgs {
		views[i] = s.view(m)
	}
	return transcriptResponse{
		Messages: views,
		Typing:   sess.Typing(),
		State:    sess.State().String(),
		Started:  sess.Started(),
	}
}

// view renders assistant text. User text is left for the client to escape.
func (s *Site) view(m assistant.Message) messageView {
	v := messageView{Message: m}
	if m.Role == assistant.RoleAssistant && m.Text != "" {
		html, err := assistant.RenderHTML(m.Text)
		if err != nil {
			s.logger.Warn("markdown render failed", "message_id", m.ID, "error", err)
			return v
		}
		v.HTML = html
	}
	return v
}
