package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Returned vectors are unit length so a dot product is the cosine similarity.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
