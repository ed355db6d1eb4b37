package document

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
)

type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	return m.hsetFn(ctx, key, fields)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	return m.createIndexFn(ctx, def)
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	return m.indexExistsFn(ctx, name)
}

func TestEnsureIndex_CreatesSchema(t *testing.T) {
	var gotDef *db.IndexDefinition
	s := &mockStore{
		indexExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			gotDef = def
			return nil
		},
	}
	repo := New(s, "documents", 4)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotDef == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if gotDef.Name != "documents" {
		t.Errorf("expected index name 'documents', got %q", gotDef.Name)
	}
	if len(gotDef.Prefixes) != 1 || gotDef.Prefixes[0] != "doc:" {
		t.Errorf("expected prefix [doc:], got %v", gotDef.Prefixes)
	}
	if len(gotDef.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(gotDef.Fields))
	}
	if gotDef.Fields[0].Name != "content" || gotDef.Fields[0].Type != db.IndexFieldText {
		t.Errorf("unexpected content field: %+v", gotDef.Fields[0])
	}
	vec := gotDef.Fields[1]
	if vec.Name != "embedding" || vec.Type != db.IndexFieldVector {
		t.Errorf("unexpected vector field: %+v", vec)
	}
	if vec.VectorAlgo != db.VectorFlat || vec.VectorDim != 4 {
		t.Errorf("expected FLAT dim=4, got %s dim=%d", vec.VectorAlgo, vec.VectorDim)
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	s := &mockStore{
		indexExistsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error {
			t.Fatal("CreateIndex must not be called when the index exists")
			return nil
		},
	}
	repo := New(s, "documents", 4)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_ToleratesCreateRace(t *testing.T) {
	s := &mockStore{
		indexExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error {
			return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
		},
	}
	repo := New(s, "documents", 4)

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Errorf("concurrent index creation must not fail, got %v", err)
	}
}

func TestEnsureIndex_PropagatesCreateError(t *testing.T) {
	s := &mockStore{
		indexExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createIndexFn: func(_ context.Context, _ *db.IndexDefinition) error {
			return errors.New("OOM")
		},
	}
	repo := New(s, "documents", 4)

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Error("expected error from CreateIndex")
	}
}

func TestUpsert_WritesHashFields(t *testing.T) {
	var (
		gotKey    string
		gotFields map[string]string
	)
	s := &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string) error {
			gotKey, gotFields = key, fields
			return nil
		},
	}
	repo := New(s, "documents", 2)

	doc := domain.Document{ID: "1", Content: "hello", Embedding: []float32{1.5, -0.25}}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "doc:1" {
		t.Errorf("expected key doc:1, got %q", gotKey)
	}
	if gotFields["content"] != "hello" {
		t.Errorf("unexpected content field %q", gotFields["content"])
	}

	blob := []byte(gotFields["embedding"])
	if len(blob) != 8 {
		t.Fatalf("expected 8-byte blob for dim 2, got %d", len(blob))
	}
	if f := math.Float32frombits(binary.LittleEndian.Uint32(blob[0:])); f != 1.5 {
		t.Errorf("expected first float 1.5, got %v", f)
	}
	if f := math.Float32frombits(binary.LittleEndian.Uint32(blob[4:])); f != -0.25 {
		t.Errorf("expected second float -0.25, got %v", f)
	}
}

func TestUpsert_RejectsDimMismatch(t *testing.T) {
	s := &mockStore{
		hsetFn: func(_ context.Context, _ string, _ map[string]string) error {
			t.Fatal("HSet must not be called on a dim mismatch")
			return nil
		},
	}
	repo := New(s, "documents", 4)

	doc := domain.Document{ID: "1", Content: "x", Embedding: []float32{0.1, 0.2}}
	if err := repo.Upsert(context.Background(), doc); err == nil {
		t.Error("expected dim mismatch error")
	}
}
