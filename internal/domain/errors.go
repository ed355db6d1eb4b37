package domain

import "errors"

var (
	// ErrUserIDRequired signals a request without the mandatory user_id field.
	ErrUserIDRequired = errors.New("user_id is required")
	// ErrRateLimited signals that the per-user request ceiling was reached.
	ErrRateLimited = errors.New("Rate limit exceeded")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrSearchBackend signals a vector store failure during a similarity query.
	ErrSearchBackend = errors.New("search backend error")
)

// BackendError wraps ErrSearchBackend while keeping the store's own message,
// which the HTTP layer surfaces to the client verbatim.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return e.Err.Error() }

func (e *BackendError) Unwrap() error { return ErrSearchBackend }

// NewBackendError wraps a vector store failure.
func NewBackendError(err error) error {
	return &BackendError{Err: err}
}
