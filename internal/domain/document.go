package domain

// Document is a stored search document. Documents are written once at seeding
// time and immutable afterwards; the vector store owns them.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
}

// DefaultVectorDim is the embedding dimensionality the index is created with.
// It must match the embedding model output (all-MiniLM-class models emit 384).
const DefaultVectorDim = 384
