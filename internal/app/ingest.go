package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"lodgechat/internal/domain"
)

// IngestService accepts CMS export batches. The export is loosely-typed JSON:
// field names drift between CMS versions and location arrives either as a
// legacy flat string or a structured address, so mapping goes through alias
// lists rather than a rigid struct.
type IngestService struct {
	repo domain.CatalogRepository
}

func NewIngestService(repo domain.CatalogRepository) *IngestService {
	return &IngestService{repo: repo}
}

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":          {"id", "hotelId", "hotel_id", "slug"},
	"name":        {"name", "hotelName", "hotel_name", "title"},
	"location":    {"location", "address", "address.full", "fullAddress"},
	"city":        {"city", "address.city", "location.city"},
	"state":       {"state", "address.state", "location.state", "province"},
	"description": {"description", "summary", "about"},
	"priceRange":  {"priceRange", "price_range", "price"},
	"type":        {"type", "propertyType", "property_type", "category"},
	"imageUrl":    {"imageUrl", "image_url", "image", "photo", "thumbnail"},
	"affiliate":   {"affiliateLink", "affiliate_link", "bookingLink", "booking_url"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func firstAlias(m map[string]any, key string) string {
	for _, p := range hotelAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

func lookupFloat(m map[string]any, paths ...string) float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func lookupStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if v, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(v))
			for _, e := range v {
				if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}

// MapCMSRecord flattens one export object into a HotelRecord. The canonical
// id derives from the normalized name slug when the export omits one, keeping
// ids stable across reseeds.
func MapCMSRecord(m map[string]any) (domain.HotelRecord, error) {
	name := firstAlias(m, "name")
	if name == "" {
		return domain.HotelRecord{}, fmt.Errorf("record has no name")
	}
	id := firstAlias(m, "id")
	if id == "" {
		id = domain.SlugID(name)
	}

	location := firstAlias(m, "location")
	if location == "" {
		// structured address fallback: flatten street/city/state
		location = joinNonEmpty(
			lookupStr(m, "address.street"), lookupStr(m, "address.line1"),
			lookupStr(m, "address.city"), lookupStr(m, "address.state"),
		)
	}

	h := domain.HotelRecord{
		ID:                id,
		Name:              name,
		Location:          location,
		City:              firstAlias(m, "city"),
		State:             firstAlias(m, "state"),
		Description:       firstAlias(m, "description"),
		Amenities:         lookupStrings(m, "amenities", "features"),
		PriceRange:        firstAlias(m, "priceRange"),
		Rating:            lookupFloat(m, "rating", "stars", "score"),
		ReviewCount:       int(lookupFloat(m, "reviewCount", "review_count", "reviews")),
		Type:              firstAlias(m, "type"),
		ImageURL:          firstAlias(m, "imageUrl"),
		AffiliateLink:     firstAlias(m, "affiliate"),
		NearbyAttractions: lookupStrings(m, "nearbyAttractions", "nearby_attractions", "attractions"),
		Coordinates: domain.Coordinates{
			Lat: lookupFloat(m, "coordinates.lat", "lat", "latitude"),
			Lng: lookupFloat(m, "coordinates.lng", "lng", "longitude", "lon"),
		},
		Region: domain.Region{
			ID:   lookupStr(m, "region.id"),
			Name: lookupStr(m, "region.name"),
			Slug: lookupStr(m, "region.slug"),
		},
	}
	if h.Region.Slug == "" && h.Region.Name != "" {
		h.Region.Slug = domain.SlugID(h.Region.Name)
	}
	return FillDefaults(h), nil
}

// Ingest upserts a batch, skipping unmappable records with a log line rather
// than failing the batch. Returns the number stored.
func (s *IngestService) Ingest(ctx context.Context, batch []map[string]any) (int, error) {
	stored := 0
	for _, m := range batch {
		h, err := MapCMSRecord(m)
		if err != nil {
			log.Warn().Err(err).Msg("skipping unmappable CMS record")
			continue
		}
		if err := s.repo.UpsertHotel(ctx, h); err != nil {
			return stored, fmt.Errorf("upsert %s: %w", h.ID, err)
		}
		stored++
	}
	return stored, nil
}
