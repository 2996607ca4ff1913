package domain

import "strings"

type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type HotelRecord struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Location          string      `json:"location"` // flat string; structured addresses are flattened on ingest
	City              string      `json:"city"`
	State             string      `json:"state"`
	Description       string      `json:"description"`
	Amenities         []string    `json:"amenities"`
	PriceRange        string      `json:"priceRange"`
	Rating            float64     `json:"rating"`
	ReviewCount       int         `json:"reviewCount"`
	Type              string      `json:"type"`
	ImageURL          string      `json:"imageUrl"`
	AffiliateLink     string      `json:"affiliateLink"`
	NearbyAttractions []string    `json:"nearbyAttractions"`
	Coordinates       Coordinates `json:"coordinates"`
	Region            Region      `json:"region"`
}

// SlugID derives the canonical hotel id from the record name so ids stay
// stable across reseeds of the same catalog export.
func SlugID(name string) string {
	var b strings.Builder
	prevDash := true // suppress leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// HasAmenity reports whether the record lists the amenity, case-insensitively.
func (h HotelRecord) HasAmenity(want string) bool {
	for _, a := range h.Amenities {
		if strings.EqualFold(strings.TrimSpace(a), want) {
			return true
		}
	}
	return false
}
