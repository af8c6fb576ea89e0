package out

import "context"

// EmbeddingProvider is the outbound port for the external text-embedding
// service. Calls are network-bound; failures propagate to the caller.
type EmbeddingProvider interface {
	// Embed returns a fixed-dimension vector for the text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
