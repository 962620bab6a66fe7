package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// OllamaChat talks to a local Ollama server's chat API.
type OllamaChat struct {
	cfg    config.ChatConfig
	client HTTPDoer
}

// ChatOption configures a chat client.
type ChatOption func(*OllamaChat)

// WithOllamaHTTPClient sets a custom HTTP client for testing.
func WithOllamaHTTPClient(client HTTPDoer) ChatOption {
	return func(c *OllamaChat) {
		c.client = client
	}
}

// NewOllamaChat creates a new Ollama chat client.
func NewOllamaChat(cfg config.ChatConfig, opts ...ChatOption) *OllamaChat {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &OllamaChat{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name.
func (c *OllamaChat) Provider() string {
	return "ollama"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
}

// Chat sends a non-streaming chat request and returns the reply content.
func (c *OllamaChat) Chat(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model: c.cfg.Ollama.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	url := c.cfg.Ollama.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama chat failed with status %d: %s", resp.StatusCode, data)
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Message.Content, nil
}
