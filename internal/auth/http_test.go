// ABOUTME: Tests for the session cookie middleware
// ABOUTME: Verifies handle issuance, reuse, and replacement of forged cookies

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsMiddleware_IssuesAndReuses(t *testing.T) {
	sessions := NewSessions([]byte("test-secret"), time.Hour, false)

	var seen []string
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, SessionFromContext(r.Context()))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Zero(t, cookie.MaxAge, "session cookie must not persist past the browser session")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	assert.Empty(t, second.Result().Cookies(), "valid handle is reused")
	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1])
}

func TestSessionsMiddleware_ReplacesForgedHandle(t *testing.T) {
	sessions := NewSessions([]byte("test-secret"), time.Hour, false)
	forger := NewSessions([]byte("attacker"), time.Hour, false)

	token, err := forger.issue("chosen-id")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	var got string
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEqual(t, "chosen-id", got)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestSessionFromContext_Empty(t *testing.T) {
	assert.Equal(t, "", SessionFromContext(t.Context()))
}
