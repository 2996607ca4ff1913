package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"lodgechat/internal/domain"
)

// IndexerService (re)builds embedding records out of band. Reindex is driven
// by template-version skew: a record already embedded under the current
// version is skipped unless forced.
type IndexerService struct {
	repo      domain.CatalogRepository
	inference domain.InferenceClient
	index     domain.EmbeddingIndex
	workers   int64
}

func NewIndexerService(repo domain.CatalogRepository, inf domain.InferenceClient, ix domain.EmbeddingIndex, workers int) *IndexerService {
	if workers <= 0 {
		workers = 8
	}
	return &IndexerService{repo: repo, inference: inf, index: ix, workers: int64(workers)}
}

// embedOne builds the template text, embeds it, and persists both the MySQL
// row and the in-memory index entry.
func (s *IndexerService) embedOne(ctx context.Context, h domain.HotelRecord) error {
	h = FillDefaults(h)
	vec, err := s.inference.Embed(ctx, EmbedTextForHotel(h))
	if err != nil {
		return fmt.Errorf("embed %s: %w", h.ID, err)
	}
	rec := domain.EmbeddingRecord{
		HotelID:         h.ID,
		Vector:          vec,
		Hotel:           h,
		TemplateVersion: EmbedTemplateVersion,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.repo.UpsertEmbedding(ctx, rec); err != nil {
		return fmt.Errorf("persist embedding %s: %w", h.ID, err)
	}
	return s.index.Upsert(ctx, rec)
}

// Reindex re-embeds the named hotel ids with bounded concurrency. Unknown
// ids are logged and skipped; one bad id never fails the batch.
func (s *IndexerService) Reindex(ctx context.Context, ids []string) (int, error) {
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			return done, err
		}
		wg.Add(1)
		go func(hotelID string) {
			defer wg.Done()
			defer sem.Release(1)

			h, err := s.repo.GetHotel(ctx, hotelID)
			if err != nil {
				log.Warn().Str("id", hotelID).Err(err).Msg("reindex skip: hotel not found")
				return
			}
			if err := s.embedOne(ctx, h); err != nil {
				log.Warn().Str("id", hotelID).Err(err).Msg("reindex failed")
				return
			}
			mu.Lock()
			done++
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return done, nil
}

// ReindexAll embeds the whole catalog, skipping records whose stored
// embedding already carries the current template version.
func (s *IndexerService) ReindexAll(ctx context.Context, force bool) (int, error) {
	hotels, err := s.repo.ListHotels(ctx)
	if err != nil {
		return 0, err
	}

	current := map[string]int{}
	if !force {
		if recs, err := s.repo.ListEmbeddings(ctx); err == nil {
			for _, r := range recs {
				current[r.HotelID] = r.TemplateVersion
			}
		}
	}

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for _, h := range hotels {
		if !force && current[h.ID] == EmbedTemplateVersion {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return done, err
		}
		wg.Add(1)
		go func(h domain.HotelRecord) {
			defer wg.Done()
			defer sem.Release(1)
			if err := s.embedOne(ctx, h); err != nil {
				log.Warn().Str("id", h.ID).Err(err).Msg("embed failed")
				return
			}
			mu.Lock()
			done++
			mu.Unlock()
		}(h)
	}
	wg.Wait()
	return done, nil
}
