package indexer

import (
	"context"

	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
)

// Repository owns the index schema and document persistence.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, doc domain.Document) error
}

// Embedder vectorizes document content at seeding time. It must be the same
// provider and model used at query time; embedding space consistency between
// indexing and querying is a hard precondition.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
