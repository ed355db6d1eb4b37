package search

import (
	"context"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
)

type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	return m.searchKNNFn(ctx, q)
}
