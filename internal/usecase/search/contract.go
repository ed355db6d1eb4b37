package search

import (
	"context"
	"time"

	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
)

// Limiter caps per-user request volume. Allow increments on success and never
// errors; a deny maps to a client-visible rate-limit error.
type Limiter interface {
	Allow(userID string) bool
}

// ResponseCache stores serialized result lists with expiry.
type ResponseCache interface {
	Lookup(ctx context.Context, key string) (string, bool)
	Store(ctx context.Context, key, value string, ttl time.Duration)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository runs the top-K similarity query against the vector store.
type Repository interface {
	TopK(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error)
}
