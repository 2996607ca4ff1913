package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "lodgechat/internal/adapters/redis"
	"lodgechat/internal/domain"
)

func TestCache_SetGetRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	in := domain.CachedResponse{
		Message: "Found 2 places.",
		Intent:  domain.IntentHotelSearch,
		Hotels: []domain.ResultHotel{
			{HotelRecord: domain.HotelRecord{ID: "casa-azul", Name: "Casa Azul"}, Score: 0.91, ExactMatch: true},
			{HotelRecord: domain.HotelRecord{ID: "villa-sol", Name: "Villa Sol"}, Score: 0.88},
		},
	}
	if err := c.Set(ctx, "search:v1:abc:top5", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.CachedResponse
	ok, err := c.Get(ctx, "search:v1:abc:top5", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(out.Hotels) != 2 || out.Hotels[0].ID != "casa-azul" || !out.Hotels[0].ExactMatch {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if out.Hotels[1].ExactMatch {
		t.Fatalf("backfill flag should survive the round trip")
	}
}

func TestCache_MissAndTTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var out domain.CachedResponse
	ok, err := c.Get(ctx, "search:v1:nothing:top5", &out)
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}

	if err := c.Set(ctx, "k", domain.CachedResponse{Message: "hi"}, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestCache_DownstreamOutageSurfacesError(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	mr.Close()

	var out domain.CachedResponse
	if _, err := c.Get(context.Background(), "k", &out); err == nil {
		t.Fatalf("expected error when redis is down")
	}
	// callers treat this as a miss and compute fresh; see the orchestrator tests
}
