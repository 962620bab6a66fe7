package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// mockHTTPClient implements HTTPDoer for testing.
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		Provider: "auto",
		Ollama: config.OllamaChatConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2:3b",
		},
		Groq: config.GroqChatConfig{
			BaseURL: "https://api.groq.com",
			Model:   "llama-3.1-8b-instant",
		},
	}
}

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		want     string
	}{
		{"explicit ollama", "ollama", "key", "ollama"},
		{"explicit groq", "groq", "", "groq"},
		{"auto without key", "auto", "", "ollama"},
		{"auto with key", "auto", "key", "groq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testChatConfig()
			cfg.Provider = tt.provider
			cfg.Groq.APIKey = tt.apiKey

			if got := New(cfg).Provider(); got != tt.want {
				t.Errorf("New().Provider() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOllamaChat(t *testing.T) {
	var captured ollamaChatRequest
	mock := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/api/chat" {
				t.Errorf("unexpected path %q", req.URL.Path)
			}
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return &http.Response{
				StatusCode: 200,
				Body: io.NopCloser(strings.NewReader(
					`{"message":{"role":"assistant","content":"the db ran out of connections"}}`)),
			}, nil
		},
	}

	c := NewOllamaChat(testChatConfig(), WithOllamaHTTPClient(mock))

	reply, err := c.Chat(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "the db ran out of connections" {
		t.Errorf("unexpected reply %q", reply)
	}

	if captured.Stream {
		t.Error("expected non-streaming request")
	}
	if captured.Model != "llama3.2:3b" {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if len(captured.Messages) != 2 ||
		captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("unexpected messages %+v", captured.Messages)
	}
}

func TestOllamaChat_ServerError(t *testing.T) {
	mock := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 503,
				Body:       io.NopCloser(strings.NewReader("overloaded")),
			}, nil
		},
	}

	c := NewOllamaChat(testChatConfig(), WithOllamaHTTPClient(mock))

	if _, err := c.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestGroqChat(t *testing.T) {
	var capturedAuth string
	mock := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/openai/v1/chat/completions" {
				t.Errorf("unexpected path %q", req.URL.Path)
			}
			capturedAuth = req.Header.Get("Authorization")
			return &http.Response{
				StatusCode: 200,
				Body: io.NopCloser(strings.NewReader(
					`{"choices":[{"message":{"role":"assistant","content":"answer"}}]}`)),
			}, nil
		},
	}

	cfg := testChatConfig()
	cfg.Groq.APIKey = "gsk-test"
	c := NewGroqChat(cfg, WithGroqHTTPClient(mock))

	reply, err := c.Chat(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "answer" {
		t.Errorf("unexpected reply %q", reply)
	}
	if capturedAuth != "Bearer gsk-test" {
		t.Errorf("unexpected auth header %q", capturedAuth)
	}
}

func TestGroqChat_NoChoices(t *testing.T) {
	mock := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(strings.NewReader(`{"choices":[]}`)),
			}, nil
		},
	}

	c := NewGroqChat(testChatConfig(), WithGroqHTTPClient(mock))

	if _, err := c.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
