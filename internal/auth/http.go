// ABOUTME: HTTP middleware that gives every browser a signed session cookie
// ABOUTME: Extracts the session id from the cookie and adds it to the request context

package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the session handle.
const SessionCookieName = "luxriel_session"

// Sessions issues and verifies session handles.
type Sessions struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	logger   *slog.Logger
}

// NewSessions creates a session manager. lifetime bounds how long a handle
// stays valid; the cookie itself has no expiry, so it ends with the browser
// session. secure marks the cookie Secure.
func NewSessions(secret []byte, lifetime time.Duration, secure bool) *Sessions {
	return &Sessions{
		secret:   secret,
		lifetime: lifetime,
		secure:   secure,
		logger:   slog.Default().With("component", "sessions"),
	}
}

// Lookup returns the session id carried by the request, if the handle is
// present and valid.
func (s *Sessions) Lookup(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	id, err := s.verify(cookie.Value)
	if err != nil {
		s.logger.Debug("rejected session handle", "error", err)
		return "", false
	}
	return id, true
}

// Ensure returns the request's session id, issuing a new handle cookie when
// the request has none or an invalid one.
func (s *Sessions) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := s.Lookup(r); ok {
		return id, nil
	}

	id := uuid.New().String()
	token, err := s.issue(id)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Debug("issued session", "session_id", id)
	return id, nil
}

// Middleware ensures every request carries a session and stores its id in
// the request context for SessionFromContext.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Ensure(w, r)
		if err != nil {
			s.logger.Error("issuing session handle", "error", err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
	})
}
