// Package search implements the request-handling pipeline: rate limiting,
// response caching, query embedding, similarity search, and result shaping.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
	"github.com/HeetShah3114/21BCE2938-ML/internal/metrics"
)

// Service orchestrates a search request end to end.
type Service struct {
	limiter  Limiter
	cache    ResponseCache
	embed    Embedder
	repo     Repository
	cacheTTL time.Duration
}

// New creates the search pipeline.
func New(limiter Limiter, cache ResponseCache, embed Embedder, repo Repository, cacheTTL time.Duration) *Service {
	return &Service{
		limiter:  limiter,
		cache:    cache,
		embed:    embed,
		repo:     repo,
		cacheTTL: cacheTTL,
	}
}

// Search runs the pipeline. Step order is fixed, each step a possible
// short-circuit: validate, rate limit, cache lookup, embed, KNN query,
// threshold filter, cache write, respond. A cache hit returns the stored
// serialized list verbatim with no timing field; that shape asymmetry is
// part of the contract.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResponse, error) {
	if req.UserID == "" {
		metrics.SearchRequestsTotal.WithLabelValues("invalid").Inc()
		return domain.SearchResponse{}, domain.ErrUserIDRequired
	}

	// The counter stays incremented even when a later step fails: failed
	// searches are not refunded.
	if !s.limiter.Allow(req.UserID) {
		metrics.SearchRequestsTotal.WithLabelValues("rate_limited").Inc()
		return domain.SearchResponse{}, domain.ErrRateLimited
	}

	key := req.CacheKey()
	if cached, ok := s.cache.Lookup(ctx, key); ok {
		metrics.SearchRequestsTotal.WithLabelValues("cache_hit").Inc()
		return domain.SearchResponse{Cached: cached, CacheHit: true}, nil
	}

	emb, err := s.embed.Embed(ctx, req.Text)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("embedding_error").Inc()
		return domain.SearchResponse{}, fmt.Errorf("vectorize query: %w", err)
	}

	// Inference time covers the similarity query and filtering only,
	// not the embedding call.
	start := time.Now()

	// top_k <= 0 asks for nothing: skip the store round-trip and respond
	// with an empty list, which still gets cached below.
	var hits []domain.SearchResult
	if req.TopK > 0 {
		hits, err = s.repo.TopK(ctx, emb.Embedding, req.TopK)
		if err != nil {
			metrics.SearchRequestsTotal.WithLabelValues("backend_error").Inc()
			return domain.SearchResponse{}, domain.NewBackendError(err)
		}
	}

	// Threshold comparison is inclusive; fewer than TopK results may remain.
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Score >= req.Threshold {
			results = append(results, h)
		}
	}

	inferenceTime := time.Since(start).Seconds()

	// Empty lists are cached too.
	if data, err := json.Marshal(results); err == nil {
		s.cache.Store(ctx, key, string(data), s.cacheTTL)
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	return domain.SearchResponse{
		Results:       results,
		InferenceTime: inferenceTime,
	}, nil
}
