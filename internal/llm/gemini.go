package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiCompleter calls the Gemini generateContent REST endpoint
type GeminiCompleter struct {
	client *http.Client
	cfg    config.ProviderConfig
}

// NewGeminiCompleter creates a Gemini client
func NewGeminiCompleter(cfg config.ProviderConfig) *GeminiCompleter {
	return &GeminiCompleter{
		client: &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		cfg:    cfg,
	}
}

func (g *GeminiCompleter) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimSuffix(g.cfg.APIURL, "/"), g.cfg.Model)
}

func (g *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.cfg.Temperature,
			MaxOutputTokens: g.cfg.MaxTokens,
		},
	}
	if system != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("status %d: invalid response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 {
		return "", errors.New("invalid response format from Gemini API")
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

// NewGemini creates the Gemini provider
func NewGemini(cfg config.ProviderConfig, retry RetryPolicy, logger *logging.Logger) *ChatProvider {
	return NewChatProvider(infoFor(ProviderGemini, cfg), NewGeminiCompleter(cfg), retry, logger)
}

func infoFor(name string, cfg config.ProviderConfig) models.ProviderInfo {
	return models.ProviderInfo{
		Name:        name,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}
