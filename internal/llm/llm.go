// Package llm generates grounded answers for the analyze flow.
package llm

import (
	"context"
	"net/http"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// ChatService sends a system and user prompt to a model and returns the
// reply text.
type ChatService interface {
	Chat(ctx context.Context, system, user string) (string, error)

	// Provider returns the backing provider name ("ollama" or "groq").
	Provider() string
}

// HTTPDoer abstracts HTTP client operations for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPDoer = (*http.Client)(nil)

// New selects a chat provider from config. An explicit provider wins;
// "auto" picks groq when an API key is configured, ollama otherwise.
func New(cfg config.ChatConfig) ChatService {
	switch cfg.Provider {
	case "groq":
		return NewGroqChat(cfg)
	case "ollama":
		return NewOllamaChat(cfg)
	default:
		if cfg.Groq.APIKey != "" {
			return NewGroqChat(cfg)
		}
		return NewOllamaChat(cfg)
	}
}
