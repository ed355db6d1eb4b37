package domain

// Request defaults applied when the client omits the field entirely.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.5
)

// SearchRequest is a single /search invocation. UserID is mandatory; TopK and
// Threshold carry their defaults when the client left them out.
type SearchRequest struct {
	UserID    string
	Text      string
	TopK      int
	Threshold float64
}

// CacheKey derives the response cache key from user and query text.
func (r SearchRequest) CacheKey() string {
	return r.UserID + ":" + r.Text
}

// SearchResult is a single scored hit. Score is cosine similarity shifted by
// +1.0, so it lies in [0, 2]. The JSON tags define both the response and the
// cached payload shape.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// SearchResponse is the pipeline output. The two shapes are asymmetric on
// purpose: a cache hit carries only the previously serialized result list
// (Cached, returned verbatim), a miss carries Results plus InferenceTime.
type SearchResponse struct {
	Results       []SearchResult
	InferenceTime float64
	Cached        string
	CacheHit      bool
}
