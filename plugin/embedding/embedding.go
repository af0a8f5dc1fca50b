// Package embedding is the query-embedding collaborator: hybrid search
// needs a vector for the query text. Note-embedding generation is owned
// elsewhere; this package only turns one query string into one vector.
package embedding

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/pkg/errors"
)

// Service generates embedding vectors for query text.
type Service interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsEnabled() bool
}

// Config holds the embedding provider configuration. Any OpenAI-compatible
// endpoint works (OpenAI, SiliconFlow, Ollama behind a shim, ...).
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openai.com/v1",
		Model:   "text-embedding-3-small",
		Timeout: 30 * time.Second,
	}
}

type openAIService struct {
	client *openai.Client
	model  string
}

// NewService creates an embedding service backed by an OpenAI-compatible
// API. Returns a disabled service when no API key is configured.
func NewService(cfg Config) Service {
	if cfg.APIKey == "" {
		return Disabled()
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openAIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (s *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create embedding")
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

func (s *openAIService) IsEnabled() bool {
	return true
}

type disabledService struct{}

// Disabled returns a service that reports itself unavailable. Hybrid search
// treats it as "no semantic channel" rather than an error.
func Disabled() Service {
	return disabledService{}
}

func (disabledService) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding service is disabled")
}

func (disabledService) IsEnabled() bool {
	return false
}
