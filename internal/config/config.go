// ABOUTME: Configuration loading and parsing for the luxriel site server
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Minimum length of auth.session_secret in bytes.
const minSessionSecret = 32

// Config represents the complete luxriel configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Content   ContentConfig   `yaml:"content" toml:"content"`
	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`

	ShutdownTimeout    time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`   // tailnet-only HTTPS with Tailscale certs
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public HTTPS via Funnel
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// AuthConfig holds the session cookie and gate credential settings.
// Either a plaintext password or a bcrypt hash may be given per gate; the
// hash wins when both are set.
type AuthConfig struct {
	SessionSecret string `yaml:"session_secret" toml:"session_secret"`
	SecureCookies bool   `yaml:"secure_cookies" toml:"secure_cookies"`
	// SessionCacheSize bounds how many sessions keep unlock flags.
	SessionCacheSize int `yaml:"session_cache_size" toml:"session_cache_size"`

	EditorID            string `yaml:"editor_id" toml:"editor_id"`
	EditorPassword      string `yaml:"editor_password" toml:"editor_password"`
	EditorPasswordHash  string `yaml:"editor_password_hash" toml:"editor_password_hash"`
	ConsolePassword     string `yaml:"console_password" toml:"console_password"`
	ConsolePasswordHash string `yaml:"console_password_hash" toml:"console_password_hash"`

	SessionTTL    time.Duration `yaml:"-" toml:"-"`
	SessionTTLRaw string        `yaml:"session_ttl" toml:"session_ttl"`
}

// ContentConfig holds override store and editor settings
type ContentConfig struct {
	// RejectStalePublish makes console publishes fail when the stored
	// tree changed after the draft was opened.
	RejectStalePublish bool  `yaml:"reject_stale_publish" toml:"reject_stale_publish"`
	MaxImageBytes      int64 `yaml:"max_image_bytes" toml:"max_image_bytes"`

	ConsoleIdleTimeout    time.Duration `yaml:"-" toml:"-"`
	ConsoleIdleTimeoutRaw string        `yaml:"console_idle_timeout" toml:"console_idle_timeout"`
}

// AssistantConfig holds the chat widget's generator settings
type AssistantConfig struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled"`
	APIKey      string  `yaml:"api_key" toml:"api_key"`
	Model       string  `yaml:"model" toml:"model"`
	Temperature float32 `yaml:"temperature" toml:"temperature"`

	IdleTimeout    time.Duration `yaml:"-" toml:"-"`
	IdleTimeoutRaw string        `yaml:"idle_timeout" toml:"idle_timeout"`
}

// Default returns the configuration used for any field a file leaves unset.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:        "localhost:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: AuthConfig{
			SessionCacheSize: 10000,
			SessionTTL:       24 * time.Hour,
		},
		Content: ContentConfig{
			MaxImageBytes:      5 << 20,
			ConsoleIdleTimeout: 30 * time.Minute,
		},
		Assistant: AssistantConfig{
			Enabled:     true,
			Model:       "gemini-3-flash-preview",
			Temperature: 0.2,
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if len(c.Auth.SessionSecret) < minSessionSecret {
		return fmt.Errorf("auth.session_secret must be at least %d bytes", minSessionSecret)
	}

	if c.Auth.SessionCacheSize <= 0 {
		return fmt.Errorf("auth.session_cache_size must be positive")
	}

	if c.Content.MaxImageBytes <= 0 {
		return fmt.Errorf("content.max_image_bytes must be positive")
	}

	if c.Assistant.Enabled && c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant.api_key is required when the assistant is enabled")
	}

	if c.Assistant.Temperature < 0 || c.Assistant.Temperature > 2 {
		return fmt.Errorf("assistant.temperature must be between 0 and 2")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"auth.session_ttl", cfg.Auth.SessionTTLRaw, &cfg.Auth.SessionTTL},
		{"content.console_idle_timeout", cfg.Content.ConsoleIdleTimeoutRaw, &cfg.Content.ConsoleIdleTimeout},
		{"assistant.idle_timeout", cfg.Assistant.IdleTimeoutRaw, &cfg.Assistant.IdleTimeout},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %q", f.name, f.raw)
		}
		*f.dst = d
	}

	return nil
}
