package domain

import "time"

// EmbeddingRecord pairs a hotel's dense vector with a denormalized metadata
// snapshot so a result card renders without a second catalog lookup. Exactly
// one record exists per hotel id; the batch indexer rebuilds it whenever the
// source text or the template version changes.
type EmbeddingRecord struct {
	HotelID         string
	Vector          []float32
	Hotel           HotelRecord // snapshot, default-filled
	TemplateVersion int
	UpdatedAt       time.Time
}
