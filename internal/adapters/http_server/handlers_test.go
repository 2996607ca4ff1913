package httpserver_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "lodgechat/internal/adapters/http_server"
	"lodgechat/internal/adapters/memindex"
	"lodgechat/internal/app"
	"lodgechat/internal/domain"
)

// ---- fakes ----

type stubInference struct{}

func (stubInference) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}
func (stubInference) Generate(ctx context.Context, prompt string) (string, error) {
	return "sure thing", nil
}

type mapCache struct{ store map[string][]byte }

func (c *mapCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *mapCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, _ := json.Marshal(v)
	c.store[key] = b
	return nil
}
func (c *mapCache) Del(ctx context.Context, key string) error { return nil }

type memRepo struct{ hotels map[string]domain.HotelRecord }

func (r *memRepo) UpsertHotel(ctx context.Context, h domain.HotelRecord) error {
	if r.hotels == nil {
		r.hotels = map[string]domain.HotelRecord{}
	}
	r.hotels[h.ID] = h
	return nil
}
func (r *memRepo) GetHotel(ctx context.Context, id string) (domain.HotelRecord, error) {
	h, ok := r.hotels[id]
	if !ok {
		return domain.HotelRecord{}, domain.ErrNotFound
	}
	return h, nil
}
func (r *memRepo) ListHotels(ctx context.Context) ([]domain.HotelRecord, error) { return nil, nil }
func (r *memRepo) UpsertEmbedding(ctx context.Context, rec domain.EmbeddingRecord) error {
	return nil
}
func (r *memRepo) ListEmbeddings(ctx context.Context) ([]domain.EmbeddingRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T, secret string) (*httptest.Server, *memRepo) {
	t.Helper()
	ix := memindex.New()
	ix.Load([]domain.EmbeddingRecord{{
		HotelID: "casa-azul",
		Vector:  []float32{1, 0},
		Hotel:   domain.HotelRecord{ID: "casa-azul", Name: "Casa Azul", City: "Cancun"},
	}})
	inf := stubInference{}
	repo := &memRepo{}
	sessions := app.NewSessionManager(10, time.Hour)
	chat := app.NewChatService(&mapCache{}, sessions,
		app.NewRetriever(inf, ix, 5), app.NewComposer(inf),
		time.Minute, app.Timeouts{Cache: 100 * time.Millisecond, Chat: time.Second})

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Chat:          chat,
		Ingest:        app.NewIngestService(repo),
		Indexer:       app.NewIndexerService(repo, inf, ix, 2),
		WebhookSecret: secret,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, repo
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

// ---- tests ----

func TestChatEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	res := postJSON(t, ts.URL+"/chat", `{"query":"Hotels in Cancun"}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var reply domain.ChatReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.SessionID == "" || len(reply.Hotels) != 1 || reply.Hotels[0].ID != "casa-azul" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestChatEndpoint_EmptyQueryIsProblemJSON(t *testing.T) {
	ts, _ := newTestServer(t, "")

	res := postJSON(t, ts.URL+"/chat", `{"query":"   "}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	res := postJSON(t, ts.URL+"/search", `{"query":"hotels in cancun","limit":3}`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var hotels []domain.ResultHotel
	if err := json.NewDecoder(res.Body).Decode(&hotels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hotels) != 1 || hotels[0].City != "Cancun" {
		t.Fatalf("unexpected hotels: %+v", hotels)
	}
}

func TestIngestEndpoint(t *testing.T) {
	ts, repo := newTestServer(t, "")

	res := postJSON(t, ts.URL+"/ingest", `[{"name":"New Place","city":"Tulum"}]`)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	if _, ok := repo.hotels["new-place"]; !ok {
		t.Fatalf("slug-derived id not stored: %+v", repo.hotels)
	}
}

func TestReindexWebhook_HMACAndFallback(t *testing.T) {
	const secret = "shh"
	ts, repo := newTestServer(t, secret)
	_ = repo.UpsertHotel(context.Background(), domain.HotelRecord{ID: "casa-azul", Name: "Casa Azul"})

	body := []byte(`{"hotelIds":["casa-azul"]}`)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	// signed request passes
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/webhooks/reindex", bytes.NewReader(body))
	req.Header.Set("X-Signature", sig)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signed request: status %d", res.StatusCode)
	}

	// bad signature rejected
	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/webhooks/reindex", bytes.NewReader(body))
	req.Header.Set("X-Signature", "deadbeef")
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad signature: status %d", res.StatusCode)
	}

	// static shared-secret fallback
	req, _ = http.NewRequest(http.MethodPost, ts.URL+"/webhooks/reindex", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Secret", secret)
	res, _ = http.DefaultClient.Do(req)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fallback secret: status %d", res.StatusCode)
	}

	// unsigned rejected
	res = postJSON(t, ts.URL+"/webhooks/reindex", string(body))
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unsigned: status %d", res.StatusCode)
	}
}
