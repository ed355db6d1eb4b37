package search

import (
	"context"
	"errors"
	"testing"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
)

func TestTopK_BuildsQuery(t *testing.T) {
	var gotQuery *db.KNNQuery
	s := &mockStore{
		searchKNNFn: func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
			gotQuery = q
			return &db.SearchResult{}, nil
		},
	}
	repo := New(s, "documents")

	vector := []float32{0.1, 0.2, 0.3}
	if _, err := repo.TopK(context.Background(), vector, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery.IndexName != "documents" {
		t.Errorf("expected index 'documents', got %q", gotQuery.IndexName)
	}
	if gotQuery.K != 5 {
		t.Errorf("expected k=5, got %d", gotQuery.K)
	}
	if len(gotQuery.Vector) != 3 || gotQuery.Vector[1] != 0.2 {
		t.Errorf("query vector not passed through: %v", gotQuery.Vector)
	}
	if len(gotQuery.ReturnFields) != 1 || gotQuery.ReturnFields[0] != "content" {
		t.Errorf("expected return fields [content], got %v", gotQuery.ReturnFields)
	}
}

func TestTopK_StripsKeyPrefix(t *testing.T) {
	s := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{
				Total: 2,
				Entries: []db.SearchEntry{
					{Key: "doc:3", Score: 1.87, Fields: map[string]string{"content": "AI is transforming industries"}},
					{Key: "doc:1", Score: 1.12, Fields: map[string]string{"content": "something else"}},
				},
			}, nil
		},
	}
	repo := New(s, "documents")

	results, err := repo.TopK(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].DocumentID != "3" {
		t.Errorf("expected document_id '3' (prefix stripped), got %q", results[0].DocumentID)
	}
	if results[0].Score != 1.87 {
		t.Errorf("expected score 1.87, got %v", results[0].Score)
	}
	if results[0].Content != "AI is transforming industries" {
		t.Errorf("unexpected content %q", results[0].Content)
	}
	if results[1].DocumentID != "1" {
		t.Errorf("expected document_id '1', got %q", results[1].DocumentID)
	}
}

func TestTopK_EmptyResult(t *testing.T) {
	s := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 0}, nil
		},
	}
	repo := New(s, "documents")

	results, err := repo.TopK(context.Background(), []float32{0.1}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestTopK_WrapsStoreError(t *testing.T) {
	storeErr := &db.Error{Op: db.OpSearch, Err: errors.New("index gone")}
	s := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return nil, storeErr
		},
	}
	repo := New(s, "documents")

	_, err := repo.TopK(context.Background(), []float32{0.1}, 5)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("store error must be wrapped, got %v", err)
	}
}
