// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "0.0.0.0:9090"
  shutdown_timeout: "5s"

database:
  path: "./test.db"

auth:
  session_secret: "`+testSecret+`"
  secure_cookies: true
  session_ttl: "12h"
  editor_id: "curator"
  editor_password: "pw"
  console_password_hash: "$2a$10$abc"

content:
  reject_stale_publish: true
  max_image_bytes: 1048576
  console_idle_timeout: "15m"

assistant:
  enabled: true
  api_key: "key"
  model: "gemini-test"
  temperature: 0.5
  idle_timeout: "1h"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:9090")
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 5*time.Second)
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if !cfg.Auth.SecureCookies {
		t.Error("Auth.SecureCookies = false, want true")
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want %v", cfg.Auth.SessionTTL, 12*time.Hour)
	}
	if cfg.Auth.EditorID != "curator" {
		t.Errorf("Auth.EditorID = %q, want %q", cfg.Auth.EditorID, "curator")
	}
	if cfg.Auth.EditorPassword != "pw" {
		t.Errorf("Auth.EditorPassword = %q, want %q", cfg.Auth.EditorPassword, "pw")
	}
	if cfg.Auth.ConsolePasswordHash != "$2a$10$abc" {
		t.Errorf("Auth.ConsolePasswordHash = %q, want %q", cfg.Auth.ConsolePasswordHash, "$2a$10$abc")
	}
	if !cfg.Content.RejectStalePublish {
		t.Error("Content.RejectStalePublish = false, want true")
	}
	if cfg.Content.MaxImageBytes != 1<<20 {
		t.Errorf("Content.MaxImageBytes = %d, want %d", cfg.Content.MaxImageBytes, 1<<20)
	}
	if cfg.Content.ConsoleIdleTimeout != 15*time.Minute {
		t.Errorf("Content.ConsoleIdleTimeout = %v, want %v", cfg.Content.ConsoleIdleTimeout, 15*time.Minute)
	}
	if cfg.Assistant.Model != "gemini-test" {
		t.Errorf("Assistant.Model = %q, want %q", cfg.Assistant.Model, "gemini-test")
	}
	if cfg.Assistant.Temperature != 0.5 {
		t.Errorf("Assistant.Temperature = %v, want 0.5", cfg.Assistant.Temperature)
	}
	if cfg.Assistant.IdleTimeout != time.Hour {
		t.Errorf("Assistant.IdleTimeout = %v, want %v", cfg.Assistant.IdleTimeout, time.Hour)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  session_secret: "`+testSecret+`"
assistant:
  enabled: false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Server.HTTPAddr != def.Server.HTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, def.Server.HTTPAddr)
	}
	if cfg.Auth.SessionTTL != def.Auth.SessionTTL {
		t.Errorf("Auth.SessionTTL = %v, want default %v", cfg.Auth.SessionTTL, def.Auth.SessionTTL)
	}
	if cfg.Content.MaxImageBytes != 5<<20 {
		t.Errorf("Content.MaxImageBytes = %d, want %d", cfg.Content.MaxImageBytes, 5<<20)
	}
	if cfg.Content.RejectStalePublish {
		t.Error("Content.RejectStalePublish = true, want false by default")
	}
	if cfg.Assistant.Model != "gemini-3-flash-preview" {
		t.Errorf("Assistant.Model = %q, want default", cfg.Assistant.Model)
	}
	if cfg.Assistant.Enabled {
		t.Error("Assistant.Enabled = true, want false from file")
	}
}

func TestLoad_TemperatureZeroIsKept(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  session_secret: "`+testSecret+`"
assistant:
  enabled: false
  temperature: 0
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Assistant.Temperature != 0 {
		t.Errorf("Assistant.Temperature = %v, want 0", cfg.Assistant.Temperature)
	}

	configPath = writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  session_secret: "`+testSecret+`"
assistant:
  enabled: false
`)
	cfg, err = Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Assistant.Temperature != 0.2 {
		t.Errorf("Assistant.Temperature = %v, want default 0.2", cfg.Assistant.Temperature)
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[server]
http_addr = "127.0.0.1:7000"

[database]
path = "./site.db"

[auth]
session_secret = "`+testSecret+`"
session_ttl = "2h"

[content]
reject_stale_publish = true

[assistant]
enabled = false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:7000" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:7000")
	}
	if cfg.Database.Path != "./site.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./site.db")
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want %v", cfg.Auth.SessionTTL, 2*time.Hour)
	}
	if !cfg.Content.RejectStalePublish {
		t.Error("Content.RejectStalePublish = false, want true")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", "[server\nhttp_addr = ")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid TOML, got nil")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %v, want parsing config file error", err)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_LUX_SECRET", testSecret)
	t.Setenv("TEST_LUX_GEMINI_KEY", "gemini-key-from-env")

	configPath := writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  session_secret: "${TEST_LUX_SECRET}"
assistant:
  api_key: "${TEST_LUX_GEMINI_KEY}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.SessionSecret != testSecret {
		t.Errorf("Auth.SessionSecret = %q, want %q", cfg.Auth.SessionSecret, testSecret)
	}
	if cfg.Assistant.APIKey != "gemini-key-from-env" {
		t.Errorf("Assistant.APIKey = %q, want %q", cfg.Assistant.APIKey, "gemini-key-from-env")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("TEST_LUX_UNSET_KEY")

	configPath := writeConfig(t, "config.yaml", `
database:
  path: "./test.db"
auth:
  session_secret: "`+testSecret+`"
assistant:
  api_key: "${TEST_LUX_UNSET_KEY}"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error when assistant key expands empty, got nil")
	}
	if !strings.Contains(err.Error(), "assistant.api_key") {
		t.Errorf("error = %v, want assistant.api_key error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
server:
  http_addr: "0.0.0.0:8080"
  invalid yaml here
    - broken
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unparseable session ttl",
			yaml:    "auth:\n  session_ttl: \"forever\"\n",
			wantErr: "auth.session_ttl",
		},
		{
			name:    "negative console idle",
			yaml:    "content:\n  console_idle_timeout: \"-1m\"\n",
			wantErr: "content.console_idle_timeout",
		},
		{
			name:    "bad shutdown timeout",
			yaml:    "server:\n  shutdown_timeout: \"10 seconds\"\n",
			wantErr: "server.shutdown_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", tt.yaml)
			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func validConfig() Config {
	cfg := Default()
	cfg.Database.Path = "./test.db"
	cfg.Auth.SessionSecret = testSecret
	cfg.Assistant.APIKey = "key"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name: "tailscale replaces http addr",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale.Enabled = true
				c.Tailscale.Hostname = "luxriel"
			},
		},
		{
			name: "tailscale needs hostname",
			mutate: func(c *Config) {
				c.Tailscale.Enabled = true
			},
			wantErr: "tailscale.hostname",
		},
		{
			name:    "missing database",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Auth.SessionSecret = "short" },
			wantErr: "auth.session_secret",
		},
		{
			name:    "zero cache size",
			mutate:  func(c *Config) { c.Auth.SessionCacheSize = 0 },
			wantErr: "auth.session_cache_size",
		},
		{
			name:    "zero image limit",
			mutate:  func(c *Config) { c.Content.MaxImageBytes = 0 },
			wantErr: "content.max_image_bytes",
		},
		{
			name:    "assistant without key",
			mutate:  func(c *Config) { c.Assistant.APIKey = "" },
			wantErr: "assistant.api_key",
		},
		{
			name: "disabled assistant without key",
			mutate: func(c *Config) {
				c.Assistant.Enabled = false
				c.Assistant.APIKey = ""
			},
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Assistant.Temperature = 3 },
			wantErr: "assistant.temperature",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_LUX_VAR1", "value1")
	t.Setenv("TEST_LUX_VAR2", "value2")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single var", "${TEST_LUX_VAR1}", "value1"},
		{"multiple vars", "${TEST_LUX_VAR1}-${TEST_LUX_VAR2}", "value1-value2"},
		{"unset var", "x${TEST_LUX_NOT_SET}y", "xy"},
		{"no vars", "plain", "plain"},
		{"dollar without braces", "$TEST_LUX_VAR1", "$TEST_LUX_VAR1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
