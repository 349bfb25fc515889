// ABOUTME: Tests for the terminal log handler and the startup summary
// ABOUTME: Color is disabled so output can be compared as plain text

package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lavriel789-crypto/luxriel/internal/config"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestTerminalHandler_Format(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, slog.LevelInfo))

	logger.With("component", "site").
		WithGroup("req").With("path", "/admin").
		Info("publish failed", "error", "disk full", slog.Group("draft", "tab", "home"))

	line := strings.TrimSpace(buf.String())
	_, rest, ok := strings.Cut(line, " ")
	require.True(t, ok)
	assert.Equal(t, `INF [site] publish failed req.path=/admin req.error="disk full" req.draft.tab=home`, rest)
}

func TestTerminalHandler_Level(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, slog.LevelWarn))

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestSummary(t *testing.T) {
	noColor(t)
	cfg := config.Default()
	cfg.Assistant.Enabled = false
	cfg.Tailscale.Enabled = true
	cfg.Tailscale.Hostname = "luxriel"
	cfg.Tailscale.Funnel = true
	cfg.Tailscale.Ephemeral = true

	lines := summarize(&cfg, "/etc/luxriel.yaml")
	require.Len(t, lines, 5)
	assert.Equal(t, summaryLine{Label: "Assistant", Note: "disabled"}, lines[3])
	assert.Equal(t, summaryLine{Label: "Tailscale", Value: "luxriel", Note: "funnel, ephemeral"}, lines[4])

	var buf bytes.Buffer
	printSummary(&buf, lines)
	assert.Contains(t, buf.String(), "▶ Config:    /etc/luxriel.yaml\n")
	assert.Contains(t, buf.String(), "▶ Assistant: (disabled)\n")
}
