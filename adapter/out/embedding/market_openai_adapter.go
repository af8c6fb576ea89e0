// Package embedding implements the text-embedding provider adapter.
package embedding

import (
	"context"
	"fmt"
	"time"

	"market_server/core/port/out"
	"market_server/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// =============================================================================
// OpenAI Embedding Adapter
// =============================================================================

// OpenAIAdapter implements out.EmbeddingProvider using the OpenAI embeddings
// API, guarded by a circuit breaker.
type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
	cb     *gobreaker.CircuitBreaker
	log    *logger.Logger
}

// Config holds embedding provider configuration.
type Config struct {
	APIKey string
	Model  string
}

// embeddingModel resolves a configured model name to the client enum.
// Unknown names fall back to ada-002.
func embeddingModel(name string) openai.EmbeddingModel {
	switch name {
	case "", "text-embedding-ada-002":
		return openai.AdaEmbeddingV2
	default:
		logger.Warn("unknown embedding model %q, using text-embedding-ada-002", name)
		return openai.AdaEmbeddingV2
	}
}

// NewOpenAIAdapter creates a new OpenAI embedding adapter.
func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	model := embeddingModel(cfg.Model)

	log := logger.WithField("component", "embedding")

	cbSettings := gobreaker.Settings{
		Name:        "openai-embeddings",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &OpenAIAdapter{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
		cb:     gobreaker.NewCircuitBreaker(cbSettings),
		log:    log,
	}
}

// Embed returns a fixed-dimension vector for the text.
func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts in one call.
func (a *OpenAIAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result, err := a.cb.Execute(func() (any, error) {
		resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: a.model,
			Input: texts,
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	resp := result.(openai.EmbeddingResponse)
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding response carries out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.EmbeddingProvider = (*OpenAIAdapter)(nil)
