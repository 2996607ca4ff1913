package domain

import "time"

// Intent is the closed set of query routes. Classification happens once per
// request; everything downstream dispatches on the tag.
type Intent string

const (
	IntentQuick       Intent = "QUICK"
	IntentHotelSearch Intent = "HOTEL_SEARCH"
	IntentGeneral     Intent = "GENERAL"
)

type ClassifiedQuery struct {
	Raw        string
	Normalized string
	Intent     Intent
}

// ResultHotel is one retrieval hit. ExactMatch is false for entries backfilled
// after post-filtering so the composer (and front end) can label them.
type ResultHotel struct {
	HotelRecord
	Score      float64 `json:"score"`
	ExactMatch bool    `json:"exactMatch"`
}

// RetrievalResult holds at most K hits, ordered by descending similarity and
// deduplicated by hotel id.
type RetrievalResult struct {
	Hotels []ResultHotel `json:"hotels"`
}

func (r RetrievalResult) IDs() []string {
	ids := make([]string, 0, len(r.Hotels))
	for _, h := range r.Hotels {
		ids = append(ids, h.ID)
	}
	return ids
}

// CachedResponse is the payload stored under a fingerprint key and replayed
// verbatim on a hit.
type CachedResponse struct {
	Message string        `json:"message"`
	Hotels  []ResultHotel `json:"hotels"`
	Intent  Intent        `json:"intent"`
}

type ChatReply struct {
	Message        string        `json:"message"`
	Hotels         []ResultHotel `json:"hotels"`
	SessionID      string        `json:"sessionId"`
	ResponseTimeMs int64         `json:"responseTimeMs"`
	CacheHit       bool          `json:"cacheHit"`
}

type Turn struct {
	Query     string
	Intent    Intent
	ResultIDs []string
	At        time.Time
}

type Session struct {
	ID        string
	Turns     []Turn
	CreatedAt time.Time
	LastSeen  time.Time
}
