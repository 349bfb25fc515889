// ABOUTME: HTTP surface of the site: pages, content API, editor, console, assistant
// ABOUTME: Every route runs behind the browser-session middleware

package site

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lavriel789-crypto/luxriel/internal/assistant"
	"github.com/lavriel789-crypto/luxriel/internal/auth"
	"github.com/lavriel789-crypto/luxriel/internal/console"
	"github.com/lavriel789-crypto/luxriel/internal/field"
	"github.com/lavriel789-crypto/luxriel/internal/overrides"
)

// DefaultHeartbeat is how often idle SSE streams get a comment line.
const DefaultHeartbeat = 30 * time.Second

// Deps are the collaborators a Site serves.
type Deps struct {
	Overrides   *overrides.Store
	Sessions    *auth.Sessions
	EditorGate  *auth.Gate
	ConsoleGate *auth.ConsoleGate
	Consoles    *console.Registry
	// Assistant is nil when the chat widget is disabled.
	Assistant *assistant.Hub

	MaxImageBytes int64
	Heartbeat     time.Duration
	Logger        *slog.Logger
}

// Site handles every HTTP route.
type Site struct {
	store       *overrides.Store
	sessions    *auth.Sessions
	editorGate  *auth.Gate
	consoleGate *auth.ConsoleGate
	consoles    *console.Registry
	assistant   *assistant.Hub

	maxImageBytes int64
	heartbeat     time.Duration
	logger        *slog.Logger
}

// New creates a Site.
func New(d Deps) *Site {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.MaxImageBytes <= 0 {
		d.MaxImageBytes = field.DefaultMaxImageBytes
	}
	if d.Heartbeat <= 0 {
		d.Heartbeat = DefaultHeartbeat
	}
	return &Site{
		store:         d.Overrides,
		sessions:      d.Sessions,
		editorGate:    d.EditorGate,
		consoleGate:   d.ConsoleGate,
		consoles:      d.Consoles,
		assistant:     d.Assistant,
		maxImageBytes: d.MaxImageBytes,
		heartbeat:     d.Heartbeat,
		logger:        logger.With("component", "site"),
	}
}

// Handler returns the full route tree. /health answers without a session.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.handleHealth)
	root.Handle("GET /static/", http.StripPrefix("/static/", staticServer()))
	root.Handle("/", s.sessions.Middleware(mux))
	return root
}

// RegisterRoutes registers the session-scoped routes on mux.
func (s *Site) RegisterRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /{page}", s.handlePage)

	// Content reads and the change feed
	mux.HandleFunc("GET /api/content", s.handleContent)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/fields/stream", s.handleFieldStream)

	// Inline editing
	mux.HandleFunc("GET /api/auth", s.handleAuthStatus)
	mux.HandleFunc("POST /api/auth/challenge", s.requireCSRF(s.handleAuthChallenge))
	mux.HandleFunc("POST /api/fields/text", s.requireCSRF(s.handleTextField))
	mux.HandleFunc("POST /api/fields/image", s.requireCSRF(s.handleImageField))

	// Admin console
	mux.HandleFunc("GET /admin", s.handleConsolePage)
	mux.HandleFunc("GET /admin/login", s.handleConsoleLoginPage)
	mux.HandleFunc("POST /admin/login", s.requireCSRF(s.handleConsoleLogin))
	mux.HandleFunc("POST /admin/sections/{tab}/{section}", s.requireCSRF(s.requireConsole(s.handleConsoleSection)))
	mux.HandleFunc("POST /admin/publish", s.requireCSRF(s.requireConsole(s.handleConsolePublish)))
	mux.HandleFunc("POST /admin/reload", s.requireCSRF(s.requireConsole(s.handleConsoleReload)))

	// Assistant
	mux.HandleFunc("GET /api/assistant/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/assistant/transcript", s.requireAssistant(s.handleTranscript))
	mux.HandleFunc("GET /api/assistant/stream", s.requireAssistant(s.handleAssistantStream))
	mux.HandleFunc("POST /api/assistant/send", s.requireCSRF(s.requireAssistant(s.handleAssistantSend)))
}

func (s *Site) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionID returns the browser session set by the middleware.
func sessionID(r *http.Request) string {
	return auth.SessionFromContext(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
