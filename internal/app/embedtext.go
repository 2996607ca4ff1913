package app

import (
	"strconv"
	"strings"

	"lodgechat/internal/domain"
)

// EmbedTemplateVersion tags every embedding record. The indexer re-embeds on
// version skew instead of diffing source text field by field.
const EmbedTemplateVersion = 1

// EmbedTextForHotel renders the fixed embedding template. Missing fields
// become empty strings, never nulls, so the same record always yields
// byte-identical input.
func EmbedTextForHotel(h domain.HotelRecord) string {
	rating := ""
	if h.Rating > 0 {
		rating = strconv.FormatFloat(h.Rating, 'f', -1, 64)
	}
	parts := []string{
		"Name: " + h.Name,
		"Location: " + h.Location,
		"City: " + h.City,
		"State: " + h.State,
		"Region: " + h.Region.Name,
		"Description: " + h.Description,
		"Amenities: " + strings.Join(h.Amenities, ", "),
		"Price range: " + h.PriceRange,
		"Rating: " + rating,
		"Type: " + h.Type,
	}
	return strings.Join(parts, "\n")
}

// EmbedTextForQuery keeps query embeddings in the same template family as
// catalog records so the two live in a comparable vector space.
func EmbedTextForQuery(normalized string) string {
	return "Query: " + normalized
}

// FillDefaults pads the metadata snapshot so a result card renders without a
// second catalog lookup. Gaps are a DataIntegrityWarning, not an error.
func FillDefaults(h domain.HotelRecord) domain.HotelRecord {
	if h.Type == "" {
		h.Type = "Hotel"
	}
	if h.ImageURL == "" {
		h.ImageURL = "/images/hotel-placeholder.jpg"
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	if h.NearbyAttractions == nil {
		h.NearbyAttractions = []string{}
	}
	return h
}
