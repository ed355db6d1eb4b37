package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
	searchuc "github.com/HeetShah3114/21BCE2938-ML/internal/usecase/search"
)

// --- fakes for the pipeline's collaborators ---

type fakeLimiter struct {
	allowFn func(userID string) bool
}

func (f *fakeLimiter) Allow(userID string) bool { return f.allowFn(userID) }

type fakeCache struct {
	lookupFn func(ctx context.Context, key string) (string, bool)
	storeFn  func(ctx context.Context, key, value string, ttl time.Duration)
}

func (f *fakeCache) Lookup(ctx context.Context, key string) (string, bool) {
	return f.lookupFn(ctx, key)
}

func (f *fakeCache) Store(ctx context.Context, key, value string, ttl time.Duration) {
	if f.storeFn != nil {
		f.storeFn(ctx, key, value, ttl)
	}
}

type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return f.embedFn(ctx, text)
}

type fakeRepo struct {
	topKFn func(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error)
}

func (f *fakeRepo) TopK(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	return f.topKFn(ctx, vector, k)
}

type serverOpts struct {
	allow   bool
	cached  string
	hit     bool
	embErr  error
	results []domain.SearchResult
	repoErr error
	gotReq  *domain.SearchRequest
}

func newTestRouter(opts *serverOpts) chi.Router {
	limiter := &fakeLimiter{allowFn: func(string) bool { return opts.allow }}
	cache := &fakeCache{
		lookupFn: func(_ context.Context, _ string) (string, bool) { return opts.cached, opts.hit },
	}
	embedder := &fakeEmbedder{
		embedFn: func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
			if opts.embErr != nil {
				return domain.EmbeddingResult{}, opts.embErr
			}
			return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
		},
	}
	repo := &fakeRepo{
		topKFn: func(_ context.Context, _ []float32, k int) ([]domain.SearchResult, error) {
			return opts.results, opts.repoErr
		},
	}

	svc := searchuc.New(limiter, cache, embedder, repo, 300*time.Second)
	srv := NewServer(svc, zap.NewNop())

	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func postSearch(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&serverOpts{allow: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"API is active"}` {
		t.Errorf("unexpected health body %q", got)
	}
}

func TestSearch_MissingUserID(t *testing.T) {
	router := newTestRouter(&serverOpts{allow: true})

	rec := postSearch(t, router, `{"text":"hello"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if body["error"] != "user_id is required" {
		t.Errorf("unexpected error message %q", body["error"])
	}
}

func TestSearch_RateLimited(t *testing.T) {
	router := newTestRouter(&serverOpts{allow: false})

	rec := postSearch(t, router, `{"user_id":"u1","text":"hello"}`)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "Rate limit exceeded" {
		t.Errorf("unexpected error message %q", body["error"])
	}
}

func TestSearch_CacheHitShape(t *testing.T) {
	cached := `[{"document_id":"1","score":1.9,"content":"x"}]`
	router := newTestRouter(&serverOpts{allow: true, hit: true, cached: cached})

	rec := postSearch(t, router, `{"user_id":"u1","text":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	got, ok := body["results"].(string)
	if !ok {
		t.Fatalf("cache hits return the stored list as a string, got %T", body["results"])
	}
	if got != cached {
		t.Errorf("cached payload must pass through verbatim, got %q", got)
	}
	if _, present := body["inference_time"]; present {
		t.Error("cache-hit responses must not carry inference_time")
	}
}

func TestSearch_MissShape(t *testing.T) {
	router := newTestRouter(&serverOpts{
		allow: true,
		results: []domain.SearchResult{
			{DocumentID: "1", Score: 1.8, Content: "hello world"},
		},
	})

	rec := postSearch(t, router, `{"user_id":"u1","text":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Results []struct {
			DocumentID string  `json:"document_id"`
			Score      float64 `json:"score"`
			Content    string  `json:"content"`
		} `json:"results"`
		InferenceTime *float64 `json:"inference_time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0].DocumentID != "1" {
		t.Errorf("unexpected results %+v", body.Results)
	}
	if body.InferenceTime == nil {
		t.Error("cache-miss responses must carry inference_time")
	}
}

func TestSearch_DefaultsOnlyWhenAbsent(t *testing.T) {
	var gotK int
	limiter := &fakeLimiter{allowFn: func(string) bool { return true }}
	cache := &fakeCache{lookupFn: func(_ context.Context, _ string) (string, bool) { return "", false }}
	embedder := &fakeEmbedder{
		embedFn: func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
		},
	}
	repo := &fakeRepo{
		topKFn: func(_ context.Context, _ []float32, k int) ([]domain.SearchResult, error) {
			gotK = k
			return nil, nil
		},
	}
	svc := searchuc.New(limiter, cache, embedder, repo, time.Minute)
	srv := NewServer(svc, zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)

	postSearch(t, r, `{"user_id":"u1","text":"q"}`)
	if gotK != domain.DefaultTopK {
		t.Errorf("absent top_k must default to %d, got %d", domain.DefaultTopK, gotK)
	}

	postSearch(t, r, `{"user_id":"u1","text":"q","top_k":2}`)
	if gotK != 2 {
		t.Errorf("explicit top_k must pass through, got %d", gotK)
	}
}

func TestSearch_BackendErrorSurfacesMessage(t *testing.T) {
	router := newTestRouter(&serverOpts{
		allow:   true,
		repoErr: errors.New("connection refused"),
	})

	rec := postSearch(t, router, `{"user_id":"u1","text":"hello"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if !strings.Contains(body["error"], "connection refused") {
		t.Errorf("store message must be surfaced, got %q", body["error"])
	}
}

func TestSearch_EmbeddingProviderError(t *testing.T) {
	router := newTestRouter(&serverOpts{
		allow:  true,
		embErr: domain.ErrEmbeddingProvider,
	})

	rec := postSearch(t, router, `{"user_id":"u1","text":"hello"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	router := newTestRouter(&serverOpts{allow: true})

	rec := postSearch(t, router, `{"user_id":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	router := newTestRouter(&serverOpts{allow: true, results: nil})

	rec := postSearch(t, router, `{"user_id":"u1","text":"hello"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Results []any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Results == nil {
		t.Error("results must serialize as an empty list, not null")
	}
	if len(body.Results) != 0 {
		t.Errorf("expected no results, got %d", len(body.Results))
	}
}
