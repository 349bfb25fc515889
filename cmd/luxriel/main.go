// ABOUTME: Entry point for the luxriel site server
// ABOUTME: Serves pages, the content editor, the admin console, and the assistant

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/lavriel789-crypto/luxriel/internal/config"
	"github.com/lavriel789-crypto/luxriel/internal/server"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _            ____  _      _
 | |_   ___  _|  _ \(_) ___| |
 | | | | \ \/ / |_) | |/ _ \ |
 | | |_| |>  <|  _ <| |  __/ |
 |_|\__,_/_/\_\_| \_\_|\___|_|
`

// getConfigPath returns the path to the config file.
// Priority: LUXRIEL_CONFIG env var > XDG_CONFIG_HOME/luxriel/config.yaml > ~/.config/luxriel/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("LUXRIEL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "luxriel", "config.yaml")
}

// getDataPath returns the path to the luxriel data directory.
// Priority: XDG_DATA_HOME/luxriel > ~/.local/share/luxriel
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "luxriel")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: luxriel <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve              Start the site server")
		fmt.Println("  init               Create a new config file interactively")
		fmt.Println("  health             Check server health")
		fmt.Println("  hash-password      Print a bcrypt hash for auth.*_password_hash")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	case "hash-password":
		err = runHashPassword(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	color.New(color.FgCyan).Print(banner)
	color.New(color.FgHiBlack).Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	printSummary(os.Stdout, summarize(cfg, configPath))

	logger.Info("starting luxriel",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"version", version,
	)

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

// summaryLine is one "label: value" row of the startup summary. Note is
// printed dimmed after the value.
type summaryLine struct {
	Label string
	Value string
	Note  string
}

func summarize(cfg *config.Config, configPath string) []summaryLine {
	lines := []summaryLine{
		{Label: "Config", Value: configPath},
		{Label: "HTTP", Value: cfg.Server.HTTPAddr},
		{Label: "Database", Value: cfg.Database.Path},
	}

	assistant := summaryLine{Label: "Assistant", Value: cfg.Assistant.Model}
	if !cfg.Assistant.Enabled {
		assistant.Value, assistant.Note = "", "disabled"
	}
	lines = append(lines, assistant)

	if cfg.Tailscale.Enabled {
		var modes []string
		switch {
		case cfg.Tailscale.Funnel:
			modes = append(modes, "funnel")
		case cfg.Tailscale.HTTPS:
			modes = append(modes, "https")
		}
		if cfg.Tailscale.Ephemeral {
			modes = append(modes, "ephemeral")
		}
		lines = append(lines, summaryLine{Label: "Tailscale", Value: cfg.Tailscale.Hostname, Note: strings.Join(modes, ", ")})
	}
	return lines
}

func printSummary(w io.Writer, lines []summaryLine) {
	arrow := color.New(color.FgGreen).Sprint("    ▶ ")
	for _, l := range lines {
		fmt.Fprintf(w, "%s%-11s%s", arrow, l.Label+":", color.CyanString(l.Value))
		if l.Note != "" {
			if l.Value != "" {
				fmt.Fprint(w, " ")
			}
			fmt.Fprint(w, color.HiBlackString("("+l.Note+")"))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
