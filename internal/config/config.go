// Package config provides configuration loading with layered overrides.
// Load order: defaults -> YAML file -> environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment variables the loader reads.
const envPrefix = "COPILOT_"

// Config is the root configuration structure for the incident copilot.
type Config struct {
	LogLevel    string            `koanf:"loglevel"`
	Server      ServerConfig      `koanf:"server"`
	Storage     StorageConfig     `koanf:"storage"`
	Chunking    ChunkingConfig    `koanf:"chunking"`
	Embedding   EmbeddingConfig   `koanf:"embedding"`
	Chat        ChatConfig        `koanf:"chat"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Audit       AuditConfig       `koanf:"audit"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port        int      `koanf:"port" validate:"min=1,max=65535"`
	CORSOrigins []string `koanf:"corsorigins"`
}

// StorageConfig controls upload persistence.
type StorageConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// ChunkingConfig controls how log files are split into retrieval units.
type ChunkingConfig struct {
	MaxLines      int `koanf:"maxlines" validate:"min=1"`
	MaxChars      int `koanf:"maxchars" validate:"min=1"`
	BasicMaxChars int `koanf:"basicmaxchars" validate:"min=1"`
	Overlap       int `koanf:"overlap" validate:"min=0"`

	// MaxChunks caps how many chunks of one file are embedded and stored.
	// Over the cap, chunks with the highest error/warn scores win.
	MaxChunks int `koanf:"maxchunks" validate:"min=1"`
}

// EmbeddingConfig configures the Ollama embedding client.
type EmbeddingConfig struct {
	BaseURL     string        `koanf:"baseurl" validate:"required,url"`
	Model       string        `koanf:"model" validate:"required"`
	Concurrency int           `koanf:"concurrency" validate:"min=1"`
	Timeout     time.Duration `koanf:"timeout"`
}

// ChatConfig configures the answer-generation model.
// Provider "auto" picks groq when an API key is set, ollama otherwise.
type ChatConfig struct {
	Provider string           `koanf:"provider" validate:"oneof=auto ollama groq"`
	Ollama   OllamaChatConfig `koanf:"ollama"`
	Groq     GroqChatConfig   `koanf:"groq"`
	Timeout  time.Duration    `koanf:"timeout"`
}

// OllamaChatConfig configures local chat inference.
type OllamaChatConfig struct {
	BaseURL string `koanf:"baseurl" validate:"required,url"`
	Model   string `koanf:"model" validate:"required"`
}

// GroqChatConfig configures cloud chat inference.
type GroqChatConfig struct {
	BaseURL string `koanf:"baseurl"`
	APIKey  string `koanf:"apikey"`
	Model   string `koanf:"model"`
}

// VectorStoreConfig selects and configures the chunk store backend.
type VectorStoreConfig struct {
	Backend       string                   `koanf:"backend" validate:"oneof=qdrant elasticsearch"`
	Qdrant        QdrantStoreConfig        `koanf:"qdrant"`
	Elasticsearch ElasticsearchStoreConfig `koanf:"elasticsearch"`
}

// QdrantStoreConfig configures the Qdrant REST backend.
type QdrantStoreConfig struct {
	URL        string `koanf:"url"`
	Collection string `koanf:"collection"`
}

// ElasticsearchStoreConfig configures the Elasticsearch backend.
type ElasticsearchStoreConfig struct {
	Addresses     []string      `koanf:"addresses"`
	Index         string        `koanf:"index"`
	Username      string        `koanf:"username"`
	Password      string        `koanf:"password"`
	FlushInterval time.Duration `koanf:"flushinterval"`
}

// AuditConfig controls the rotating audit log of embed/chat operations.
type AuditConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"maxsizemb"`
	MaxBackups int    `koanf:"maxbackups"`
	MaxAgeDays int    `koanf:"maxagedays"`
	Compress   bool   `koanf:"compress"`
}

// defaults returns the default configuration values.
func defaults() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:5173"},
		},
		Storage: StorageConfig{
			Dir: "/tmp/llm-incident-copilot",
		},
		Chunking: ChunkingConfig{
			MaxLines:      50,
			MaxChars:      2000,
			BasicMaxChars: 1000,
			Overlap:       150,
			MaxChunks:     50,
		},
		Embedding: EmbeddingConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "nomic-embed-text",
			Concurrency: 5,
			Timeout:     60 * time.Second,
		},
		Chat: ChatConfig{
			Provider: "auto",
			Ollama: OllamaChatConfig{
				BaseURL: "http://localhost:11434",
				Model:   "llama3.2:3b",
			},
			Groq: GroqChatConfig{
				BaseURL: "https://api.groq.com",
				Model:   "llama-3.1-8b-instant",
			},
			Timeout: 120 * time.Second,
		},
		VectorStore: VectorStoreConfig{
			Backend: "qdrant",
			Qdrant: QdrantStoreConfig{
				URL:        "http://localhost:6333",
				Collection: "log_chunks",
			},
			Elasticsearch: ElasticsearchStoreConfig{
				Index:         "log_chunks",
				FlushInterval: 5 * time.Second,
			},
		},
		Audit: AuditConfig{
			Enabled:    false,
			Path:       "audit/llm-audit.log",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// Load reads configuration from all sources with proper override order.
// Order: defaults -> config file -> environment variables (COPILOT_*).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		// Try default config locations
		for _, path := range []string{"./config.yaml", "/etc/incident-copilot/config.yaml"} {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
