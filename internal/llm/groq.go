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

// GroqChat talks to Groq's OpenAI-compatible chat completions API.
type GroqChat struct {
	cfg    config.ChatConfig
	client HTTPDoer
}

// GroqOption configures a GroqChat client.
type GroqOption func(*GroqChat)

// WithGroqHTTPClient sets a custom HTTP client for testing.
func WithGroqHTTPClient(client HTTPDoer) GroqOption {
	return func(c *GroqChat) {
		c.client = client
	}
}

// NewGroqChat creates a new Groq chat client.
func NewGroqChat(cfg config.ChatConfig, opts ...GroqOption) *GroqChat {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &GroqChat{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name.
func (c *GroqChat) Provider() string {
	return "groq"
}

type groqChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type groqChatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Chat sends a chat completion request and returns the first choice.
func (c *GroqChat) Chat(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(groqChatRequest{
		Model: c.cfg.Groq.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	url := c.cfg.Groq.BaseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Groq.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("groq chat failed with status %d: %s", resp.StatusCode, data)
	}

	var out groqChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
