package app

import (
	"strings"

	"lodgechat/internal/domain"
)

// Greetings resolve in constant time with no network call.
var quickPhrases = map[string]struct{}{
	"hello": {}, "hi": {}, "hey": {}, "hola": {}, "yo": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"thanks": {}, "thank you": {}, "bye": {}, "goodbye": {},
	"how are you": {}, "whats up": {}, "what's up": {},
}

var lodgingVocab = []string{
	"hotel", "hotels", "resort", "resorts", "hostel", "motel",
	"accommodation", "accommodations", "lodging", "suite", "suites",
	"villa", "villas", "room", "rooms", "stay", "staying",
	"place to stay", "places to stay", "all inclusive", "adults only",
	"bed and breakfast", "b&b", "airbnb", "check in", "check-in",
}

// Classify routes a query to exactly one intent tag. It never errors;
// anything unrecognizable defaults to GENERAL. When lodging and generic
// vocabulary both appear, lodging wins: surfacing listings is the primary
// value of the assistant.
func Classify(raw string) domain.ClassifiedQuery {
	cq := domain.ClassifiedQuery{
		Raw:        raw,
		Normalized: NormalizeQuery(raw),
		Intent:     domain.IntentGeneral,
	}

	probe := strings.Trim(cq.Normalized, "!?.,")
	if _, ok := quickPhrases[probe]; ok {
		cq.Intent = domain.IntentQuick
		return cq
	}

	for _, w := range lodgingVocab {
		if strings.Contains(cq.Normalized, w) {
			cq.Intent = domain.IntentHotelSearch
			return cq
		}
	}
	return cq
}
