// Package document stores seed documents as Redis hashes and owns the FT
// index schema covering them.
package document

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/HeetShah3114/21BCE2938-ML/internal/db"
	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
)

// KeyPrefix is the hash key prefix for stored documents.
const KeyPrefix = "doc:"

// store is the consumer interface for document storage (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo persists documents and their index.
type Repo struct {
	store     store
	indexName string
	vectorDim int
}

// New creates a document repository for the given index and vector dimension.
func New(s store, indexName string, vectorDim int) *Repo {
	if vectorDim <= 0 {
		vectorDim = domain.DefaultVectorDim
	}
	return &Repo{store: s, indexName: indexName, vectorDim: vectorDim}
}

// EnsureIndex creates the FT index if it does not exist yet:
// content TEXT + embedding VECTOR FLAT <dim> COSINE over hash prefix doc:.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName,
		Prefixes: []string{KeyPrefix},
		Fields: []db.IndexField{
			{Name: "content", Type: db.IndexFieldText},
			{
				Name:       "embedding",
				Type:       db.IndexFieldVector,
				VectorAlgo: db.VectorFlat,
				VectorDim:  r.vectorDim,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Lost the race with a concurrent starter; the index is there.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// Upsert writes a document hash, overwriting any prior version.
func (r *Repo) Upsert(ctx context.Context, doc domain.Document) error {
	if len(doc.Embedding) != r.vectorDim {
		return fmt.Errorf("document %s: embedding dim %d, index expects %d",
			doc.ID, len(doc.Embedding), r.vectorDim)
	}

	fields := map[string]string{
		"content":   doc.Content,
		"embedding": vectorToBytes(doc.Embedding),
	}
	if err := r.store.HSet(ctx, KeyPrefix+doc.ID, fields); err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// vectorToBytes serializes a vector as little-endian float32, the layout the
// FT index reads hash vector fields in.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
