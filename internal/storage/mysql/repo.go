package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lodgechat/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotel(ctx context.Context, h domain.HotelRecord) error {
	amen, _ := json.Marshal(h.Amenities)
	attr, _ := json.Marshal(h.NearbyAttractions)
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.Name,
		h.Location,
		h.City,
		h.State,
		h.Description,
		string(amen),
		h.PriceRange,
		h.Rating,
		h.ReviewCount,
		h.Type,
		h.ImageURL,
		h.AffiliateLink,
		string(attr),
		h.Coordinates.Lat,
		h.Coordinates.Lng,
		h.Region.ID,
		h.Region.Name,
		h.Region.Slug,
	)
	return err
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.HotelRecord, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HotelRecord{}, domain.ErrNotFound
	}
	return h, err
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.HotelRecord, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertEmbedding(ctx context.Context, rec domain.EmbeddingRecord) error {
	vec, _ := json.Marshal(rec.Vector)
	snap, _ := json.Marshal(rec.Hotel)
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, upsertEmbeddingSQL,
		rec.HotelID, string(vec), string(snap), rec.TemplateVersion, at)
	return err
}

func (r *Repo) ListEmbeddings(ctx context.Context) ([]domain.EmbeddingRecord, error) {
	rows, err := r.db.QueryContext(ctx, listEmbeddingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EmbeddingRecord
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var vec, snap []byte
		if err := rows.Scan(&rec.HotelID, &vec, &snap, &rec.TemplateVersion, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(vec, &rec.Vector); err != nil {
			return nil, fmt.Errorf("embedding %s: bad vector: %w", rec.HotelID, err)
		}
		if err := json.Unmarshal(snap, &rec.Hotel); err != nil {
			return nil, fmt.Errorf("embedding %s: bad snapshot: %w", rec.HotelID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanHotel(row rowScanner) (domain.HotelRecord, error) {
	var h domain.HotelRecord
	var amen, attr []byte
	err := row.Scan(
		&h.ID, &h.Name, &h.Location, &h.City, &h.State, &h.Description,
		&amen, &h.PriceRange, &h.Rating, &h.ReviewCount, &h.Type,
		&h.ImageURL, &h.AffiliateLink, &attr,
		&h.Coordinates.Lat, &h.Coordinates.Lng,
		&h.Region.ID, &h.Region.Name, &h.Region.Slug,
	)
	if err != nil {
		return domain.HotelRecord{}, err
	}
	_ = json.Unmarshal(amen, &h.Amenities)
	_ = json.Unmarshal(attr, &h.NearbyAttractions)
	return h, nil
}
