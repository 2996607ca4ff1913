//go:build integration || !unit

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	httpserver "lodgechat/internal/adapters/http_server"
	"lodgechat/internal/adapters/inference"
	"lodgechat/internal/adapters/memindex"
	redisad "lodgechat/internal/adapters/redis"
	"lodgechat/internal/app"
	"lodgechat/internal/domain"
)

// fake provider: hotel texts embed along {1,0}, cancun-flavored queries along
// the same axis, everything else orthogonal. Deterministic on input text.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/embeddings":
			var req struct {
				Input string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			vec := []float32{0, 1}
			if strings.Contains(strings.ToLower(req.Input), "cancun") {
				vec = []float32{1, 0}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
		case "/generate":
			_ = json.NewEncoder(w).Encode(map[string]any{"text": "Happy to help with your trip."})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func seedIndex(ix *memindex.Index) {
	ix.Load([]domain.EmbeddingRecord{
		{
			HotelID: "casa-azul",
			Vector:  []float32{1, 0},
			Hotel: domain.HotelRecord{
				ID: "casa-azul", Name: "Casa Azul", City: "Cancun",
				Amenities: []string{"Adults Only", "Pool"}, Rating: 4.6,
			},
		},
		{
			HotelID: "villa-sol",
			Vector:  []float32{0.95, 0.05},
			Hotel: domain.HotelRecord{
				ID: "villa-sol", Name: "Villa Sol", City: "Cancun",
				Amenities: []string{"Kids Club"}, Rating: 4.1,
			},
		},
		{
			HotelID: "selva-lodge",
			Vector:  []float32{0, 1},
			Hotel:   domain.HotelRecord{ID: "selva-lodge", Name: "Selva Lodge", City: "Tulum"},
		},
	})
}

func newStack(t *testing.T) *httptest.Server {
	t.Helper()
	provider := fakeProvider(t)
	t.Cleanup(provider.Close)

	inf, err := inference.New(provider.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("inference client: %v", err)
	}

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	ix := memindex.New()
	seedIndex(ix)

	sessions := app.NewSessionManager(10, time.Hour)
	chat := app.NewChatService(cache, sessions,
		app.NewRetriever(inf, ix, 5), app.NewComposer(inf),
		15*time.Minute, app.Timeouts{Cache: 200 * time.Millisecond, Chat: 2 * time.Second})

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Chat: chat})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func postChat(t *testing.T, url, body string) domain.ChatReply {
	t.Helper()
	res, err := http.Post(url+"/chat", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var reply domain.ChatReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return reply
}

func TestE2E_CancunSearchMissThenHit(t *testing.T) {
	ts := newStack(t)

	first := postChat(t, ts.URL, `{"query":"Hotels in Cancun"}`)
	if first.CacheHit {
		t.Fatalf("first call should miss")
	}
	if len(first.Hotels) == 0 {
		t.Fatalf("expected hotels")
	}
	for _, h := range first.Hotels {
		if h.ExactMatch && h.City != "Cancun" {
			t.Fatalf("exact match outside Cancun: %+v", h)
		}
	}

	second := postChat(t, ts.URL, `{"query":"Hotels in Cancun"}`)
	if !second.CacheHit {
		t.Fatalf("verbatim repeat should hit")
	}
	a, _ := json.Marshal(first.Hotels)
	b, _ := json.Marshal(second.Hotels)
	if string(a) != string(b) {
		t.Fatalf("replayed hotel set differs:\n%s\n%s", a, b)
	}
}

func TestE2E_AdultsOnlyFilterFlagsBackfill(t *testing.T) {
	ts := newStack(t)

	reply := postChat(t, ts.URL, `{"query":"Show me adults only resorts in Cancun"}`)
	for _, h := range reply.Hotels {
		if h.ExactMatch {
			if !h.HasAmenity("adults only") {
				t.Fatalf("exact match %s lacks adults only amenity", h.ID)
			}
		}
		if h.ID == "villa-sol" && h.ExactMatch {
			t.Fatalf("villa-sol must be flagged as backfill")
		}
	}
}

func TestE2E_QuickAndSessionFlow(t *testing.T) {
	ts := newStack(t)

	hello := postChat(t, ts.URL, `{"query":"Hello"}`)
	if len(hello.Hotels) != 0 || hello.SessionID == "" {
		t.Fatalf("unexpected QUICK reply: %+v", hello)
	}

	next := postChat(t, ts.URL, `{"query":"Hotels in Cancun","sessionId":"`+hello.SessionID+`"}`)
	if next.SessionID != hello.SessionID {
		t.Fatalf("session id changed across turns")
	}
}
