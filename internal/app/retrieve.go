package app

import (
	"context"
	"strings"

	"lodgechat/internal/domain"
)

// Retriever embeds the query, runs nearest-neighbor search, and applies
// detected constraints as post-filters. Filtering happens after ranking so
// semantic relevance dominates ordering while hard constraints still prune
// mismatches.
type Retriever struct {
	inference domain.InferenceClient
	index     domain.EmbeddingIndex
	topK      int
}

func NewRetriever(inf domain.InferenceClient, ix domain.EmbeddingIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{inference: inf, index: ix, topK: topK}
}

func (r *Retriever) TopK() int { return r.topK }

// queryConstraints are the structural filters parsed from free text.
type queryConstraints struct {
	place     string // city or region token, lowercased
	amenity   string // exact amenity phrase
	priceTier string // bucket string like "$" or "$$$$"
}

func (c queryConstraints) empty() bool {
	return c.place == "" && c.amenity == "" && c.priceTier == ""
}

// amenityPhrases are multi-word phrases matched verbatim in the query and,
// case-insensitively, against record amenities.
var amenityPhrases = []string{
	"adults only", "all inclusive", "pet friendly", "beachfront",
	"free wifi", "swim up bar", "kids club",
}

var priceTierVocab = map[string]string{
	"cheap": "$", "budget": "$", "affordable": "$$",
	"luxury": "$$$$", "luxurious": "$$$$", "upscale": "$$$$", "five star": "$$$$",
}

// placeMarkers introduce a location mention: "hotels in cancun",
// "resorts near tulum".
var placeMarkers = []string{" in ", " near ", " around ", " at "}

func parseConstraints(normalized string) queryConstraints {
	var c queryConstraints
	for _, p := range amenityPhrases {
		if strings.Contains(normalized, p) {
			c.amenity = p
			break
		}
	}
	for word, tier := range priceTierVocab {
		if strings.Contains(normalized, word) {
			c.priceTier = tier
			break
		}
	}
	for _, m := range placeMarkers {
		if i := strings.LastIndex(normalized, m); i >= 0 {
			c.place = strings.Trim(normalized[i+len(m):], " ?!.,")
			break
		}
	}
	return c
}

func matchesConstraints(h domain.ResultHotel, c queryConstraints) bool {
	if c.place != "" {
		place := c.place
		if !strings.EqualFold(h.City, place) &&
			!strings.EqualFold(h.Region.Name, place) &&
			!strings.EqualFold(h.Region.Slug, place) &&
			!strings.Contains(strings.ToLower(h.Location), place) {
			return false
		}
	}
	if c.amenity != "" && !h.HasAmenity(c.amenity) {
		return false
	}
	if c.priceTier != "" && h.PriceRange != "" && h.PriceRange != c.priceTier {
		return false
	}
	return true
}

// Retrieve runs the full pipeline for a normalized query. Zero catalog
// matches yields an empty result, never an error. When post-filtering leaves
// fewer than K, next-best non-matching hits backfill the set, flagged
// non-exact for the composer.
func (r *Retriever) Retrieve(ctx context.Context, normalized string) (domain.RetrievalResult, error) {
	return r.RetrieveK(ctx, normalized, r.topK)
}

// RetrieveK is Retrieve with an explicit result budget, used by the direct
// search endpoint.
func (r *Retriever) RetrieveK(ctx context.Context, normalized string, k int) (domain.RetrievalResult, error) {
	if k <= 0 {
		k = r.topK
	}
	if r.index.Len() == 0 {
		return domain.RetrievalResult{Hotels: []domain.ResultHotel{}}, nil
	}

	vec, err := r.inference.Embed(ctx, EmbedTextForQuery(normalized))
	if err != nil {
		return domain.RetrievalResult{}, err
	}

	// Over-fetch so the post-filter has a candidate pool beyond K to draw
	// exact matches and backfill from.
	candidates, err := r.index.Search(ctx, vec, k*4)
	if err != nil {
		return domain.RetrievalResult{}, err
	}

	cons := parseConstraints(normalized)
	out := make([]domain.ResultHotel, 0, k)
	seen := make(map[string]struct{}, k)

	for _, h := range candidates {
		if len(out) == k {
			break
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		if matchesConstraints(h, cons) {
			h.ExactMatch = true
			h.HotelRecord = FillDefaults(h.HotelRecord)
			out = append(out, h)
			seen[h.ID] = struct{}{}
		}
	}
	if cons.empty() {
		return domain.RetrievalResult{Hotels: out}, nil
	}

	// Backfill with next-best non-matching hits rather than returning an
	// undersized set.
	for _, h := range candidates {
		if len(out) == k {
			break
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		h.ExactMatch = false
		h.HotelRecord = FillDefaults(h.HotelRecord)
		out = append(out, h)
		seen[h.ID] = struct{}{}
	}
	return domain.RetrievalResult{Hotels: out}, nil
}
