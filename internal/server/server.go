// ABOUTME: Server orchestrator that wires storage, gates, console, assistant, and HTTP
// ABOUTME: Listens on plain TCP or a tsnet node, and shuts everything down in order

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/lavriel789-crypto/luxriel/internal/assistant"
	"github.com/lavriel789-crypto/luxriel/internal/auth"
	"github.com/lavriel789-crypto/luxriel/internal/config"
	"github.com/lavriel789-crypto/luxriel/internal/console"
	"github.com/lavriel789-crypto/luxriel/internal/gemini"
	"github.com/lavriel789-crypto/luxriel/internal/overrides"
	"github.com/lavriel789-crypto/luxriel/internal/site"
	"github.com/lavriel789-crypto/luxriel/internal/store"
)

// Server owns every long-lived component of a running site.
type Server struct {
	config      *config.Config
	kv          store.KVStore
	overrides   *overrides.Store
	flags       *auth.FlagStore
	consoles    *console.Registry
	assistant   *assistant.Hub
	site        *site.Site
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger

	// generator overrides the Gemini client, for tests.
	generator assistant.Generator
}

// Option customizes a Server before its components are built.
type Option func(*Server)

// WithGenerator replaces the Gemini client with gen.
func WithGenerator(gen assistant.Generator) Option {
	return func(s *Server) { s.generator = gen }
}

// initStore opens the SQLite database named by config or LUXRIEL_DB_PATH.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("LUXRIEL_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// editorCredentials falls back to the built-in id and password for any
// field the config leaves empty.
func editorCredentials(cfg config.AuthConfig) auth.Credentials {
	creds := auth.Credentials{
		ID:           cfg.EditorID,
		Password:     cfg.EditorPassword,
		PasswordHash: cfg.EditorPasswordHash,
	}
	if creds.ID == "" {
		creds.ID = auth.DefaultEditorID
	}
	if creds.Password == "" && creds.PasswordHash == "" {
		creds.Password = auth.DefaultEditorPassword
	}
	return creds
}

func consoleCredentials(cfg config.AuthConfig) auth.Credentials {
	creds := auth.Credentials{
		Password:     cfg.ConsolePassword,
		PasswordHash: cfg.ConsolePasswordHash,
	}
	if creds.Password == "" && creds.PasswordHash == "" {
		creds.Password = auth.DefaultConsolePassword
	}
	return creds
}

// New builds a Server from cfg. Nothing listens until Run.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger.With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	kv, err := initStore(cfg)
	if err != nil {
		return nil, err
	}
	s.kv = kv

	s.overrides = overrides.New(kv, logger)
	s.flags = auth.NewFlagStore(cfg.Auth.SessionTTL, cfg.Auth.SessionCacheSize)

	editorCreds, consoleCreds := editorCredentials(cfg.Auth), consoleCredentials(cfg.Auth)
	if editorCreds.PasswordHash == "" && editorCreds.Password == auth.DefaultEditorPassword {
		s.logger.Warn("inline editor is using the built-in password; set auth.editor_password_hash")
	}
	if consoleCreds.PasswordHash == "" && consoleCreds.Password == auth.DefaultConsolePassword {
		s.logger.Warn("admin console is using the built-in password; set auth.console_password_hash")
	}

	s.consoles = console.NewRegistry(s.overrides, console.Options{
		RejectStale: cfg.Content.RejectStalePublish,
		Logger:      logger,
	}, cfg.Content.ConsoleIdleTimeout)

	if cfg.Assistant.Enabled {
		gen := s.generator
		if gen == nil {
			temperature := cfg.Assistant.Temperature
			gen, err = gemini.New(ctx, gemini.Config{
				APIKey:      cfg.Assistant.APIKey,
				Model:       cfg.Assistant.Model,
				Temperature: &temperature,
			}, logger)
			if err != nil {
				s.closeComponents()
				return nil, fmt.Errorf("creating assistant generator: %w", err)
			}
		}
		s.assistant = assistant.NewHub(gen, assistant.Options{
			SystemPrompt: assistant.SystemPrompt,
			IdleTimeout:  cfg.Assistant.IdleTimeout,
			Logger:       logger,
		})
		s.logger.Info("assistant enabled", "model", cfg.Assistant.Model)
	} else {
		s.logger.Info("assistant disabled")
	}

	s.site = site.New(site.Deps{
		Overrides:     s.overrides,
		Sessions:      auth.NewSessions([]byte(cfg.Auth.SessionSecret), cfg.Auth.SessionTTL, cfg.Auth.SecureCookies),
		EditorGate:    auth.NewEditorGate(s.flags, editorCreds),
		ConsoleGate:   auth.NewConsoleGate(s.flags, consoleCreds),
		Consoles:      s.consoles,
		Assistant:     s.assistant,
		MaxImageBytes: cfg.Content.MaxImageBytes,
		Logger:        logger,
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.site.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts serving and blocks until ctx is canceled or the server fails.
// Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		s.closeComponents()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	// The caller's context is already done, so shutdown gets a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	shutdownErr := s.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}

	s.logger.Info("starting server", "http_addr", s.config.Server.HTTPAddr)
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "luxriel", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}

// setupTailscaleListener brings up a tsnet node and listens on it: Funnel
// for public HTTPS, tailnet HTTPS with Tailscale certs, or plain :80.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	s.logTailscaleStatus(tsCfg.Hostname, status)

	switch {
	case tsCfg.Funnel:
		s.logger.Info("enabling tailscale funnel (public HTTPS) on :443")
		ln, err := s.tsnetServer.ListenFunnel("tcp", ":443")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale funnel: %w", err)
		}
		return ln, nil
	case tsCfg.HTTPS:
		return s.createTailscaleTLSListener()
	default:
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}
}

func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

// createTailscaleTLSListener creates a TLS listener using Tailscale's auto-provisioned certs.
func (s *Server) createTailscaleTLSListener() (net.Listener, error) {
	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops accepting requests, waits for in-flight ones, and releases
// every component. Open SSE streams end when their subscriptions close.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Closing the broadcasters ends streaming handlers so Shutdown can drain.
	s.overrides.Close()
	if s.assistant != nil {
		s.assistant.Close()
	}

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", s.closeComponents())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

// closeComponents releases everything New created. Safe to call twice.
func (s *Server) closeComponents() error {
	if s.consoles != nil {
		s.consoles.Close()
	}
	if s.flags != nil {
		s.flags.Close()
	}
	if s.overrides != nil {
		s.overrides.Close()
	}
	if s.kv != nil {
		return s.kv.Close()
	}
	return nil
}
