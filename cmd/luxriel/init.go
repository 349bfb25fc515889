// ABOUTME: Interactive config generation and password hashing commands
// ABOUTME: init writes a YAML config with a fresh session secret

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/lavriel789-crypto/luxriel/internal/auth"
)

// generateSessionSecret returns 32 random bytes, base64 encoded.
func generateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func yes(answer string) bool {
	a := strings.ToLower(answer)
	return a == "yes" || a == "y"
}

// initAnswers is everything runInit asks for.
type initAnswers struct {
	HTTPAddr      string
	DBPath        string
	SessionSecret string

	TailscaleEnabled bool
	TSHostname       string
	TSAuthKey        string
	TSEphemeral      bool
	TSFunnel         bool

	EditorPasswordHash  string
	ConsolePasswordHash string

	GeminiAPIKey string

	LogLevel  string
	LogFormat string
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("luxriel configuration setup")
	fmt.Println("===========================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDBPath := filepath.Join(getDataPath(), "luxriel.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !yes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	secret, err := generateSessionSecret()
	if err != nil {
		return err
	}
	a := initAnswers{SessionSecret: secret}

	fmt.Println("\n--- Server Configuration ---")
	a.HTTPAddr = prompt(reader, "HTTP address", "localhost:8080")

	fmt.Println("\n--- Database Configuration ---")
	a.DBPath = prompt(reader, "SQLite database path", defaultDBPath)

	fmt.Println("\n--- Tailscale Configuration ---")
	a.TailscaleEnabled = yes(prompt(reader, "Enable Tailscale?", "no"))
	if a.TailscaleEnabled {
		a.TSHostname = prompt(reader, "Tailscale hostname", "luxriel")
		a.TSAuthKey = prompt(reader, "Tailscale auth key (leave empty to use TS_AUTHKEY)", "")
		a.TSEphemeral = yes(prompt(reader, "Ephemeral node?", "no"))
		a.TSFunnel = yes(prompt(reader, "Enable Funnel (public HTTPS)?", "no"))
	}

	fmt.Println("\n--- Editing Passwords ---")
	fmt.Println("Leave empty to keep the built-in passwords.")
	if pw := prompt(reader, "Inline editor password", ""); pw != "" {
		if a.EditorPasswordHash, err = auth.HashPassword(pw); err != nil {
			return err
		}
	}
	if pw := prompt(reader, "Admin console password", ""); pw != "" {
		if a.ConsolePasswordHash, err = auth.HashPassword(pw); err != nil {
			return err
		}
	}

	fmt.Println("\n--- Assistant ---")
	a.GeminiAPIKey = prompt(reader, "Gemini API key (leave empty to disable the assistant)", "")

	fmt.Println("\n--- Logging Configuration ---")
	a.LogLevel = prompt(reader, "Log level (debug/info/warn/error)", "info")
	a.LogFormat = prompt(reader, "Log format (text/json)", "text")

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// The file holds the session secret and possibly an API key.
	if err := os.WriteFile(outputFile, []byte(renderConfig(a)), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(a.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  luxriel serve\n")

	return nil
}

// renderConfig produces the YAML config file for a.
func renderConfig(a initAnswers) string {
	var cfg strings.Builder
	cfg.WriteString("# luxriel configuration\n")
	cfg.WriteString("# Generated by luxriel init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n", a.HTTPAddr))
	cfg.WriteString("  shutdown_timeout: \"10s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", a.DBPath))
	cfg.WriteString("\n")

	cfg.WriteString("tailscale:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.TailscaleEnabled))
	if a.TailscaleEnabled {
		cfg.WriteString(fmt.Sprintf("  hostname: %q\n", a.TSHostname))
		if a.TSAuthKey != "" {
			cfg.WriteString(fmt.Sprintf("  auth_key: %q\n", a.TSAuthKey))
		}
		cfg.WriteString(fmt.Sprintf("  ephemeral: %t\n", a.TSEphemeral))
		cfg.WriteString(fmt.Sprintf("  funnel: %t\n", a.TSFunnel))
	}
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  session_secret: %q\n", a.SessionSecret))
	cfg.WriteString(fmt.Sprintf("  secure_cookies: %t\n", a.TailscaleEnabled && a.TSFunnel))
	cfg.WriteString("  session_ttl: \"24h\"\n")
	if a.EditorPasswordHash != "" {
		cfg.WriteString(fmt.Sprintf("  editor_password_hash: %q\n", a.EditorPasswordHash))
	}
	if a.ConsolePasswordHash != "" {
		cfg.WriteString(fmt.Sprintf("  console_password_hash: %q\n", a.ConsolePasswordHash))
	}
	cfg.WriteString("\n")

	cfg.WriteString("content:\n")
	cfg.WriteString("  reject_stale_publish: false\n")
	cfg.WriteString("  max_image_bytes: 5242880\n")
	cfg.WriteString("  console_idle_timeout: \"30m\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("assistant:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", a.GeminiAPIKey != ""))
	if a.GeminiAPIKey != "" {
		cfg.WriteString(fmt.Sprintf("  api_key: %q\n", a.GeminiAPIKey))
	}
	cfg.WriteString("  model: \"gemini-3-flash-preview\"\n")
	cfg.WriteString("  temperature: 0.2\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", a.LogLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", a.LogFormat))

	return cfg.String()
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

// runHashPassword prints a bcrypt hash of the password given as the only
// argument, or read from the terminal without echo, or from piped stdin.
func runHashPassword(args []string) error {
	var password string
	switch {
	case len(args) > 1:
		return fmt.Errorf("usage: luxriel hash-password [password]")
	case len(args) == 1:
		password = args[0]
	case term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Fprint(os.Stderr, "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = string(b)
	default:
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
