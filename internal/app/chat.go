package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"lodgechat/internal/adapters/observability"
	"lodgechat/internal/domain"
)

// Timeouts split the per-request latency budget. Cache covers the
// non-essential read/write legs; Chat caps the essential classify→retrieve→
// compose leg on a miss.
type Timeouts struct {
	Cache time.Duration
	Chat  time.Duration
}

// ChatService sequences a request:
// key → cache check → (hit: replay) | (miss: classify → retrieve → compose →
// cache write) → session append. Cache and session failures are swallowed;
// essential-step failures degrade to an apology reply instead of a server
// error.
type ChatService struct {
	cache     domain.Cache
	sessions  domain.SessionStore
	retriever *Retriever
	composer  *Composer
	cacheTTL  time.Duration
	timeouts  Timeouts
}

func NewChatService(cache domain.Cache, sessions domain.SessionStore, r *Retriever, c *Composer, ttl time.Duration, t Timeouts) *ChatService {
	if t.Cache <= 0 {
		t.Cache = 250 * time.Millisecond
	}
	if t.Chat <= 0 {
		t.Chat = 8 * time.Second
	}
	return &ChatService{cache: cache, sessions: sessions, retriever: r, composer: c, cacheTTL: ttl, timeouts: t}
}

func (s *ChatService) Chat(ctx context.Context, query, sessionID string) (domain.ChatReply, error) {
	start := time.Now()

	if NormalizeQuery(query) == "" {
		return domain.ChatReply{}, domain.ErrEmptyQuery
	}

	session := s.sessions.GetOrCreate(ctx, sessionID)
	key := CacheKey(query, s.retriever.TopK())

	// Cache read: unavailability is a miss, never a failure.
	if cached, ok := s.cacheRead(ctx, key); ok {
		reply := domain.ChatReply{
			Message:        cached.Message,
			Hotels:         cached.Hotels,
			SessionID:      session.ID,
			ResponseTimeMs: time.Since(start).Milliseconds(),
			CacheHit:       true,
		}
		s.appendTurn(ctx, session.ID, query, cached.Intent, cached.Hotels)
		return reply, nil
	}

	cq := Classify(query)
	observability.ObserveIntent(string(cq.Intent))

	var (
		message  string
		hotels   = []domain.ResultHotel{}
		degraded bool
	)

	switch cq.Intent {
	case domain.IntentQuick:
		// constant time, no network
		message = s.composer.Quick()

	case domain.IntentHotelSearch:
		rctx, cancel := context.WithTimeout(ctx, s.timeouts.Chat)
		rstart := time.Now()
		res, err := s.retriever.Retrieve(rctx, cq.Normalized)
		cancel()
		observability.ObserveStage("retrieve", time.Since(rstart))
		if err != nil {
			log.Warn().Err(err).Str("query", cq.Normalized).Msg("retrieval failed, degrading")
			observability.ChatDegraded.Inc()
			message = s.composer.Apology()
			degraded = true
			break
		}
		hotels = res.Hotels
		message = s.composer.HotelSearch(cq, res)

	default: // GENERAL
		gctx, cancel := context.WithTimeout(ctx, s.timeouts.Chat)
		gstart := time.Now()
		var generated bool
		message, generated = s.composer.General(gctx, cq, session.Turns)
		cancel()
		observability.ObserveStage("compose", time.Since(gstart))
		if !generated {
			observability.ChatDegraded.Inc()
			degraded = true
		}
	}

	if !degraded {
		s.cacheWrite(ctx, key, domain.CachedResponse{Message: message, Hotels: hotels, Intent: cq.Intent})
	}
	s.appendTurn(ctx, session.ID, query, cq.Intent, hotels)

	return domain.ChatReply{
		Message:        message,
		Hotels:         hotels,
		SessionID:      session.ID,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// Search is the direct retrieval path behind POST /search: no session, no
// response-cache write, structural output only.
func (s *ChatService) Search(ctx context.Context, query string, limit int) ([]domain.ResultHotel, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = s.retriever.TopK()
	}
	if limit > 20 {
		limit = 20
	}
	rctx, cancel := context.WithTimeout(ctx, s.timeouts.Chat)
	defer cancel()
	res, err := s.retriever.RetrieveK(rctx, normalized, limit)
	if err != nil {
		return nil, err
	}
	return res.Hotels, nil
}

func (s *ChatService) cacheRead(ctx context.Context, key string) (domain.CachedResponse, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.timeouts.Cache)
	defer cancel()
	rstart := time.Now()
	var cached domain.CachedResponse
	ok, err := s.cache.Get(cctx, key, &cached)
	observability.ObserveStage("cache_read", time.Since(rstart))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return domain.CachedResponse{}, false
	}
	return cached, ok
}

func (s *ChatService) cacheWrite(ctx context.Context, key string, v domain.CachedResponse) {
	// Concurrent misses on the same key may race here; last write wins.
	// Compute is idempotent, so that is accepted rather than locked around.
	wctx, cancel := context.WithTimeout(ctx, s.timeouts.Cache)
	defer cancel()
	wstart := time.Now()
	if err := s.cache.Set(wctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed, response unaffected")
	}
	observability.ObserveStage("cache_write", time.Since(wstart))
}

func (s *ChatService) appendTurn(ctx context.Context, sessionID, query string, intent domain.Intent, hotels []domain.ResultHotel) {
	s.sessions.Append(ctx, sessionID, domain.Turn{
		Query:     query,
		Intent:    intent,
		ResultIDs: domain.RetrievalResult{Hotels: hotels}.IDs(),
		At:        time.Now(),
	})
}
