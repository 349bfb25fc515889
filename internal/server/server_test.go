// ABOUTME: Tests for server wiring against an in-memory SQLite database
// ABOUTME: Covers credential defaults, persistence through HTTP, and Run/Shutdown

package server

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lavriel789-crypto/luxriel/internal/assistant"
	"github.com/lavriel789-crypto/luxriel/internal/auth"
	"github.com/lavriel789-crypto/luxriel/internal/config"
	"github.com/lavriel789-crypto/luxriel/internal/content"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Database.Path = ":memory:"
	cfg.Auth.SessionSecret = strings.Repeat("s", 32)
	cfg.Assistant.Enabled = false
	return &cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	s, err := New(t.Context(), cfg, discardLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func TestEditorCredentials_Defaults(t *testing.T) {
	creds := editorCredentials(config.AuthConfig{})
	assert.True(t, creds.Match(auth.DefaultEditorID, auth.DefaultEditorPassword))

	creds = editorCredentials(config.AuthConfig{EditorID: "ops", EditorPassword: "hunter2"})
	assert.True(t, creds.Match("ops", "hunter2"))
	assert.False(t, creds.Match(auth.DefaultEditorID, auth.DefaultEditorPassword))

	hash, err := auth.HashPassword("from-hash")
	require.NoError(t, err)
	creds = editorCredentials(config.AuthConfig{EditorPasswordHash: hash})
	assert.True(t, creds.Match(auth.DefaultEditorID, "from-hash"))
	assert.False(t, creds.Match(auth.DefaultEditorID, auth.DefaultEditorPassword))
}

func TestConsoleCredentials_Defaults(t *testing.T) {
	assert.True(t, consoleCredentials(config.AuthConfig{}).Match("", auth.DefaultConsolePassword))

	creds := consoleCredentials(config.AuthConfig{ConsolePassword: "open"})
	assert.True(t, creds.Match("", "open"))
	assert.False(t, creds.Match("", auth.DefaultConsolePassword))
}

func TestNew_AssistantRequiresKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assistant.Enabled = true

	_, err := New(t.Context(), cfg, discardLogger())
	require.Error(t, err)
}

func TestServer_EditPersists(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(srv.URL + "/api/auth")
	require.NoError(t, err)
	var status struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()

	form := url.Values{
		"path":     {"home.hero.title"},
		"text":     {"Persisted"},
		"id":       {auth.DefaultEditorID},
		"password": {auth.DefaultEditorPassword},
	}
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL+"/api/fields/text", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", status.CSRFToken)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, ok := content.GetString(s.overrides.Load(t.Context()), "home.hero.title")
	require.True(t, ok)
	assert.Equal(t, "Persisted", got)
}

func TestServer_InjectedGenerator(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assistant.Enabled = true
	cfg.Assistant.APIKey = "unused"

	gen := assistant.GeneratorFunc(func(ctx context.Context, _, _ string, _ *assistant.Image) iter.Seq2[string, error] {
		return func(yield func(string, error) bool) { yield("hi", nil) }
	})
	s := newTestServer(t, cfg, WithGenerator(gen))
	require.NotNil(t, s.assistant)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/assistant/transcript")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, err := New(t.Context(), testConfig(t), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.HTTPAddr = "256.0.0.1:99999"
	s, err := New(t.Context(), cfg, discardLogger())
	require.NoError(t, err)

	err = s.Run(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on HTTP address")
}
