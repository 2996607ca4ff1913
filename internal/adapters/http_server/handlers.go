package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"lodgechat/internal/app"
	"lodgechat/internal/domain"
)

type Handlers struct {
	Chat    *app.ChatService
	Ingest  *app.IngestService
	Indexer *app.IndexerService

	// Reindex webhook verification: HMAC over the raw body, with a static
	// shared-secret header as fallback. Empty secret disables the route.
	WebhookSecret string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/chat", h.chat)
	s.mux.Post("/search", h.search)
	s.mux.Post("/ingest", h.ingest)
	s.mux.Post("/webhooks/reindex", h.reindex)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON with a query field")
		return
	}
	reply, err := h.Chat.Chat(r.Context(), req.Query, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			writeProblem(w, http.StatusBadRequest, "Invalid query", "query must not be empty")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal", "chat pipeline failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON with a query field")
		return
	}
	hotels, err := h.Chat.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			writeProblem(w, http.StatusBadRequest, "Invalid query", "query must not be empty")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Upstream failed", "retrieval unavailable")
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (h *Handlers) ingest(w http.ResponseWriter, r *http.Request) {
	var batch []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON array of hotel records")
		return
	}
	stored, err := h.Ingest.Ingest(r.Context(), batch)
	if err != nil {
		log.Error().Err(err).Int("stored", stored).Msg("ingest batch failed")
		writeProblem(w, http.StatusInternalServerError, "Ingest failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stored": stored})
}

type reindexRequest struct {
	HotelIDs []string `json:"hotelIds"`
}

func (h *Handlers) reindex(w http.ResponseWriter, r *http.Request) {
	if h.WebhookSecret == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "could not read body")
		return
	}
	if !h.verifySignature(r, body) {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "bad signature")
		return
	}

	var req reindexRequest
	if err := json.Unmarshal(body, &req); err != nil || len(req.HotelIDs) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "hotelIds must be a non-empty array")
		return
	}
	done, err := h.Indexer.Reindex(r.Context(), req.HotelIDs)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Reindex failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reindexed": done})
}

// verifySignature checks X-Signature (hex HMAC-SHA256 of the raw body) and
// falls back to the static X-Webhook-Secret header.
func (h *Handlers) verifySignature(r *http.Request, body []byte) bool {
	if sig := r.Header.Get("X-Signature"); sig != "" {
		mac := hmac.New(sha256.New, []byte(h.WebhookSecret))
		mac.Write(body)
		want := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(sig), []byte(want))
	}
	if secret := r.Header.Get("X-Webhook-Secret"); secret != "" {
		return subtle.ConstantTimeCompare([]byte(secret), []byte(h.WebhookSecret)) == 1
	}
	return false
}
