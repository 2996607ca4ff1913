package domain

import "context"

// Cache is the response cache. Read errors are treated as misses by callers;
// write errors are logged and swallowed. Caching is a latency optimization,
// never a correctness dependency.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// InferenceClient is the opaque embedding/LLM provider.
type InferenceClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbeddingIndex supports nearest-neighbor search over catalog embeddings.
// Search returns at most k hits ordered by descending similarity, ties broken
// by ascending hotel id, deduplicated by id. An empty index returns an empty
// slice, never an error.
type EmbeddingIndex interface {
	Upsert(ctx context.Context, rec EmbeddingRecord) error
	Remove(ctx context.Context, hotelID string) error
	Search(ctx context.Context, vector []float32, k int) ([]ResultHotel, error)
	Len() int
}

// CatalogRepository persists hotel records and their embedding rows.
type CatalogRepository interface {
	UpsertHotel(ctx context.Context, h HotelRecord) error
	GetHotel(ctx context.Context, id string) (HotelRecord, error)
	ListHotels(ctx context.Context) ([]HotelRecord, error)
	UpsertEmbedding(ctx context.Context, rec EmbeddingRecord) error
	ListEmbeddings(ctx context.Context) ([]EmbeddingRecord, error)
}

// SessionStore tracks conversations. Expiry never fails an in-flight request,
// it only resets context for the next turn.
type SessionStore interface {
	GetOrCreate(ctx context.Context, id string) Session
	Append(ctx context.Context, id string, t Turn)
}
