package memindex_test

import (
	"context"
	"testing"

	"lodgechat/internal/adapters/memindex"
	"lodgechat/internal/domain"
)

func rec(id string, vec []float32) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		HotelID: id,
		Vector:  vec,
		Hotel:   domain.HotelRecord{ID: id, Name: id},
	}
}

func TestSearch_OrderAndTopK(t *testing.T) {
	ix := memindex.New()
	ctx := context.Background()
	_ = ix.Upsert(ctx, rec("far", []float32{0, 1}))
	_ = ix.Upsert(ctx, rec("near", []float32{1, 0.1}))
	_ = ix.Upsert(ctx, rec("mid", []float32{1, 1}))

	hits, err := ix.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "near" || hits[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", hits)
	}
}

func TestSearch_TieBreaksByAscendingID(t *testing.T) {
	ix := memindex.New()
	ctx := context.Background()
	// identical vectors -> identical scores
	_ = ix.Upsert(ctx, rec("zeta", []float32{1, 0}))
	_ = ix.Upsert(ctx, rec("alpha", []float32{1, 0}))
	_ = ix.Upsert(ctx, rec("mango", []float32{1, 0}))

	hits, _ := ix.Search(ctx, []float32{1, 0}, 3)
	if hits[0].ID != "alpha" || hits[1].ID != "mango" || hits[2].ID != "zeta" {
		t.Fatalf("tie break broken: %+v", hits)
	}
}

func TestSearch_FewerThanKAndEmpty(t *testing.T) {
	ix := memindex.New()
	ctx := context.Background()

	hits, err := ix.Search(ctx, []float32{1, 0}, 5)
	if err != nil || len(hits) != 0 {
		t.Fatalf("empty index: hits=%v err=%v", hits, err)
	}

	_ = ix.Upsert(ctx, rec("only", []float32{1, 0}))
	hits, _ = ix.Search(ctx, []float32{1, 0}, 5)
	if len(hits) != 1 {
		t.Fatalf("expected the single entry, got %d", len(hits))
	}
}

func TestUpsert_OneRecordPerHotelID(t *testing.T) {
	ix := memindex.New()
	ctx := context.Background()
	_ = ix.Upsert(ctx, rec("dup", []float32{0, 1}))
	_ = ix.Upsert(ctx, rec("dup", []float32{1, 0}))

	if ix.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", ix.Len())
	}
	hits, _ := ix.Search(ctx, []float32{1, 0}, 1)
	if hits[0].Score < 0.99 {
		t.Fatalf("expected the newer vector to win: %+v", hits[0])
	}
}

func TestLoad_ReplacesContents(t *testing.T) {
	ix := memindex.New()
	ctx := context.Background()
	_ = ix.Upsert(ctx, rec("old", []float32{1}))

	ix.Load([]domain.EmbeddingRecord{rec("a", []float32{1}), rec("b", []float32{1})})
	if ix.Len() != 2 {
		t.Fatalf("expected 2 after load, got %d", ix.Len())
	}
	_ = ix.Remove(ctx, "a")
	if ix.Len() != 1 {
		t.Fatalf("expected 1 after remove, got %d", ix.Len())
	}
}
