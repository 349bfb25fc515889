// ABOUTME: Gemini-backed reply generator for the assistant widget
// ABOUTME: Streams text fragments and classifies quota failures

// Package gemini adapts google.golang.org/genai to assistant.Generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/lavriel789-crypto/luxriel/internal/assistant"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-3-flash-preview"
	// DefaultTemperature keeps replies close to the persona's facts.
	DefaultTemperature float32 = 0.2

	// FallbackPrompt is sent when an image arrives with no text.
	FallbackPrompt = "공간 데이터를 분석하여 직영 실행가 기준의 마스터 플랜을 제안하십시오."
)

// ErrNoAPIKey is returned by New when no key is configured.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// Config holds client settings. A nil Temperature means DefaultTemperature;
// an explicit zero is sent as zero.
type Config struct {
	APIKey      string
	Model       string
	Temperature *float32
	HTTPClient  *http.Client
}

// streamer is the slice of genai.Models the client uses.
type streamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client generates assistant replies with Gemini.
type Client struct {
	models      streamer
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ assistant.Generator = (*Client)(nil)

// New creates a client for the Gemini API backend.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return newClient(gc.Models, cfg, logger), nil
}

func newClient(models streamer, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &Client{
		models:      models,
		model:       cfg.Model,
		temperature: temperature,
		logger:      logger.With("component", "gemini", "model", cfg.Model),
	}
}

// Generate streams the reply to one user turn. Empty chunks are skipped.
// Quota and rate-limit failures wrap assistant.ErrQuotaExceeded.
func (c *Client) Generate(ctx context.Context, systemPrompt, userText string, image *assistant.Image) iter.Seq2[string, error] {
	contents := []*genai.Content{genai.NewContentFromParts(buildParts(userText, image), genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	return func(yield func(string, error) bool) {
		c.logger.Debug("generate", "has_image", image != nil, "text_len", len(userText))
		for resp, err := range c.models.GenerateContentStream(ctx, c.model, contents, config) {
			if err != nil {
				err = classify(err)
				c.logger.Error("stream failed", "error", err)
				yield("", err)
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// buildParts puts the image first, then the text.
func buildParts(userText string, image *assistant.Image) []*genai.Part {
	var parts []*genai.Part
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}
	if strings.TrimSpace(userText) == "" {
		userText = FallbackPrompt
	}
	return append(parts, genai.NewPartFromText(userText))
}

// classify marks quota exhaustion so the session can pick the right apology.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isQuota(err) {
		return fmt.Errorf("%w: %w", assistant.ErrQuotaExceeded, err)
	}
	return err
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && quotaAPIError(apiErr) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && quotaAPIError(*apiErrPtr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}

func quotaAPIError(e genai.APIError) bool {
	return e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}
