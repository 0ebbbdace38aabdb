package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/logging"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message *chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GroqCompleter calls an OpenAI-compatible chat completions endpoint
type GroqCompleter struct {
	client *http.Client
	cfg    config.ProviderConfig
}

// NewGroqCompleter creates a Groq client
func NewGroqCompleter(cfg config.ProviderConfig) *GroqCompleter {
	return &GroqCompleter{
		client: &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		cfg:    cfg,
	}
}

func (g *GroqCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("status %d: invalid response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return "", errors.New("invalid response format from Groq API")
	}

	return out.Choices[0].Message.Content, nil
}

// NewGroq creates the Groq provider
func NewGroq(cfg config.ProviderConfig, retry RetryPolicy, logger *logging.Logger) *ChatProvider {
	return NewChatProvider(infoFor(ProviderGroq, cfg), NewGroqCompleter(cfg), retry, logger)
}
