// Package indexer is the one-time bootstrap: it creates the index schema and
// seeds the sample document set. Not part of the request pipeline.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/HeetShah3114/21BCE2938-ML/internal/domain"
)

// Service seeds documents at startup.
type Service struct {
	repo    Repository
	embed   Embedder
	workers int
	logger  *zap.Logger
}

// New creates an indexer. workers bounds concurrent embedding calls during
// seeding.
func New(repo Repository, embed Embedder, workers int, logger *zap.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{repo: repo, embed: embed, workers: workers, logger: logger}
}

// Seed ensures the index exists and (re)indexes the given contents under
// sequential IDs starting at 1. Runs on every start; upserts are idempotent.
func (s *Service) Seed(ctx context.Context, contents []string) error {
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return fmt.Errorf("create seed pool: %w", err)
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i, content := range contents {
		id := strconv.Itoa(i + 1)
		content := content

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.seedOne(ctx, id, content); err != nil {
				record(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			record(fmt.Errorf("submit seed task %s: %w", id, submitErr))
		}
	}

	wg.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Info("Documents reindexed successfully", zap.Int("count", len(contents)))
	return nil
}

func (s *Service) seedOne(ctx context.Context, id, content string) error {
	emb, err := s.embed.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", id, err)
	}

	doc := domain.Document{
		ID:        id,
		Content:   content,
		Embedding: emb.Embedding,
	}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("index document %s: %w", id, err)
	}
	return nil
}
