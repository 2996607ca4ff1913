package memindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"lodgechat/internal/domain"
)

// Index is an in-process nearest-neighbor index over catalog embeddings.
// The whole catalog fits in memory; search is brute-force cosine similarity,
// which is deterministic and keeps ordering reproducible across restarts.
type Index struct {
	mu   sync.RWMutex
	recs map[string]domain.EmbeddingRecord // keyed by hotel id, one per hotel
}

func New() *Index {
	return &Index{recs: make(map[string]domain.EmbeddingRecord)}
}

// Load replaces the index contents wholesale, e.g. at boot from MySQL.
func (ix *Index) Load(recs []domain.EmbeddingRecord) {
	m := make(map[string]domain.EmbeddingRecord, len(recs))
	for _, r := range recs {
		m[r.HotelID] = r
	}
	ix.mu.Lock()
	ix.recs = m
	ix.mu.Unlock()
}

func (ix *Index) Upsert(_ context.Context, rec domain.EmbeddingRecord) error {
	ix.mu.Lock()
	ix.recs[rec.HotelID] = rec
	ix.mu.Unlock()
	return nil
}

func (ix *Index) Remove(_ context.Context, hotelID string) error {
	ix.mu.Lock()
	delete(ix.recs, hotelID)
	ix.mu.Unlock()
	return nil
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.recs)
}

// Search returns up to k hits ordered by descending cosine similarity, ties
// broken by ascending hotel id. An empty index yields an empty slice.
func (ix *Index) Search(_ context.Context, vector []float32, k int) ([]domain.ResultHotel, error) {
	if k <= 0 {
		return []domain.ResultHotel{}, nil
	}

	ix.mu.RLock()
	hits := make([]domain.ResultHotel, 0, len(ix.recs))
	for _, rec := range ix.recs {
		hits = append(hits, domain.ResultHotel{
			HotelRecord: rec.Hotel,
			Score:       cosine(vector, rec.Vector),
		})
	}
	ix.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
