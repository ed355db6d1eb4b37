// Package search adapts FT.SEARCH KNN results into domain search results.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
	"github.com/HeetShah3114/21BCE2938-ML/internal/repository/document"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the search pipeline's Repository contract.
type Repo struct {
	store     store
	indexName string
}

// New creates a search repository over the given index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, indexName: indexName}
}

// TopK returns the k most similar documents to the query vector, ordered by
// descending score. No threshold filtering happens at this layer.
func (r *Repo) TopK(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"content"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	return parseKNNResults(sr), nil
}

func parseKNNResults(sr *db.SearchResult) []domain.SearchResult {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	results := make([]domain.SearchResult, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, domain.SearchResult{
			DocumentID: strings.TrimPrefix(entry.Key, document.KeyPrefix),
			Score:      entry.Score,
			Content:    entry.Fields["content"],
		})
	}
	return results
}
