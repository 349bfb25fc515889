// ABOUTME: Content read API and the server-sent change feed
// ABOUTME: Change events carry no payload; clients re-read what they display

package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lavriel789-crypto/luxriel/internal/content"
	"github.com/lavriel789-crypto/luxriel/internal/field"
)

// ChangeEvent is the SSE event name for store changes.
const ChangeEvent = "configUpdated"

type contentResponse struct {
	Path     string `json:"path"`
	Value    string `json:"value"`
	Override bool   `json:"override"`
}

// handleContent resolves one text path: the override if present, else the
// caller's default.
func (s *Site) handleContent(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if _, err := content.Split(path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tree := s.store.Load(r.Context())
	_, override := content.GetString(tree, path)
	writeJSON(w, http.StatusOK, contentResponse{
		Path:     path,
		Value:    field.Text{Path: path, Default: r.URL.Query().Get("default")}.Resolve(tree),
		Override: override,
	})
}

type configResponse struct {
	Revision int64        `json:"revision"`
	Tree     content.Tree `json:"tree"`
}

// handleConfig returns the whole override tree.
func (s *Site) handleConfig(w http.ResponseWriter, r *http.Request) {
	tree, rev := s.store.Snapshot(r.Context())
	writeJSON(w, http.StatusOK, configResponse{Revision: rev, Tree: tree})
}

// handleEvents streams a configUpdated event after every store write.
func (s *Site) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startSSE(w)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	changes, subID := s.store.Subscribe(r.Context())
	defer s.store.Unsubscribe(subID)

	fmt.Fprintf(w, "event: connected\ndata: {\"revision\": %d}\n\n", s.store.Revision(r.Context()))
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case change, ok := <-changes:
			if !ok {
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: {}\n\n", change.Revision, ChangeEvent)
			flusher.Flush()
		}
	}
}

// FieldEvent is the SSE event name for a mounted field's effective value.
const FieldEvent = "value"

type fieldValue struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// handleFieldStream mounts one field and streams its effective value: once on
// connect and again whenever a store change alters it. Image paths stream
// their source and caption together.
func (s *Site) handleFieldStream(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if _, err := content.Split(path); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, isImage := content.DescriptionPath(path); isImage {
		b := imageField(path).Mount(r.Context(), s.store)
		defer b.Close()
		streamBinding(s, w, r, path, b)
		return
	}

	b := field.Text{Path: path, Default: r.URL.Query().Get("default")}.Mount(r.Context(), s.store)
	defer b.Close()
	streamBinding(s, w, r, path, b)
}

func streamBinding[T comparable](s *Site, w http.ResponseWriter, r *http.Request, path string, b *field.Binding[T]) {
	flusher, ok := startSSE(w)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	if err := writeEvent(w, flusher, FieldEvent, fieldValue{Path: path, Value: b.Value()}); err != nil {
		s.logger.Error("encoding field value", "path", path, "error", err)
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-b.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-b.Changed():
			if err := writeEvent(w, flusher, FieldEvent, fieldValue{Path: path, Value: b.Value()}); err != nil {
				s.logger.Error("encoding field value", "path", path, "error", err)
				return
			}
		}
	}
}

// startSSE sets event-stream headers.
func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	return flusher, true
}

// writeEvent writes one SSE event with a JSON payload.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
	return nil
}
