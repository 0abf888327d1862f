package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"advisoret/internal/geo"
	"advisoret/internal/moderation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Venue is a rated establishment. Rows are created only through
// proposal approval or admin action, never by ordinary users directly.
type Venue struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	City          string    `json:"city"`
	Address       string    `json:"address"`
	MapURL        *string   `json:"map_url,omitempty"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Approved      bool      `json:"approved"`
	Awarded       bool      `json:"awarded"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Location satisfies geo.Locatable for nearby ranking.
func (v Venue) Location() geo.Point {
	return geo.Point{Lat: v.Latitude, Lng: v.Longitude}
}

// VenueSummary is the slice of a venue hydrated into ranking rows.
type VenueSummary struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	City          string  `json:"city"`
	CoverImageURL *string `json:"cover_image_url"`
}

type VenueFilter struct {
	City   string
	Search string
	Page   int
	Limit  int
}

type VenuesStore struct {
	db *pgxpool.Pool
}

const venueColumns = `
	id, name, city, address, map_url, cover_image_url,
	latitude, longitude, approved, awarded, created_at, updated_at
`

func scanVenue(row pgx.Row) (*Venue, error) {
	var v Venue
	err := row.Scan(
		&v.ID, &v.Name, &v.City, &v.Address, &v.MapURL, &v.CoverImageURL,
		&v.Latitude, &v.Longitude, &v.Approved, &v.Awarded, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s *VenuesStore) GetByID(ctx context.Context, venueID int64) (*Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1`
	return scanVenue(s.db.QueryRow(ctx, query, venueID))
}

// List returns approved venues, optionally filtered by city and a
// case-insensitive name search, newest first.
func (s *VenuesStore) List(ctx context.Context, filter VenueFilter) ([]Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if filter.Limit <= 0 || filter.Limit > 60 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	query := `SELECT ` + venueColumns + ` FROM venues WHERE approved = true`
	args := []interface{}{}

	if filter.City != "" {
		args = append(args, filter.City)
		query += fmt.Sprintf(" AND lower(city) = lower($%d)", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVenues(rows)
}

// ListWithCoordinates returns the bounded pool ranked by the nearby
// screen. Venues missing either coordinate are excluded at the query so
// the haversine pass never sees them.
func (s *VenuesStore) ListWithCoordinates(ctx context.Context, limit int) ([]Venue, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if limit <= 0 || limit > 200 {
		limit = 200
	}

	query := `
		SELECT ` + venueColumns + `
		FROM venues
		WHERE approved = true AND latitude IS NOT NULL AND longitude IS NOT NULL
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVenues(rows)
}

func collectVenues(rows pgx.Rows) ([]Venue, error) {
	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(
			&v.ID, &v.Name, &v.City, &v.Address, &v.MapURL, &v.CoverImageURL,
			&v.Latitude, &v.Longitude, &v.Approved, &v.Awarded, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (s *VenuesStore) Create(ctx context.Context, venue *Venue) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO venues (name, city, address, map_url, latitude, longitude, approved, awarded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRow(ctx, query,
		venue.Name, venue.City, venue.Address, venue.MapURL,
		venue.Latitude, venue.Longitude, venue.Approved,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
}

// Update patches a venue's fields from an admin edit.
func (s *VenuesStore) Update(ctx context.Context, venueID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	for key, value := range updates {
		switch key {
		case "name", "city", "address", "map_url", "latitude", "longitude", "approved", "awarded":
			args = append(args, value)
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, len(args)))
		default:
			return fmt.Errorf("unsupported field: %s", key)
		}
	}

	args = append(args, venueID)
	query := fmt.Sprintf(
		"UPDATE venues SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args),
	)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *VenuesStore) SetCoverImage(ctx context.Context, venueID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE venues SET cover_image_url = $1, updated_at = now() WHERE id = $2`, url, venueID)
	return err
}

func (s *VenuesStore) ClearCoverImage(ctx context.Context, venueID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE venues SET cover_image_url = NULL, updated_at = now() WHERE id = $1`, venueID)
	return err
}

// GetRatingStats returns the rating count and raw average for a venue.
func (s *VenuesStore) GetRatingStats(ctx context.Context, venueID int64) (total int, average float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT COUNT(id), COALESCE(AVG(overall), 0)
		FROM ratings
		WHERE venue_id = $1
	`
	err = s.db.QueryRow(ctx, query, venueID).Scan(&total, &average)
	return total, average, err
}

// DedupePool returns the candidate venues the moderation heuristic
// compares a proposal against: every venue in the proposal's city plus
// every venue with a map link.
func (s *VenuesStore) DedupePool(ctx context.Context, city string) ([]moderation.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, name, city, COALESCE(map_url, '')
		FROM venues
		WHERE lower(city) = lower($1) OR map_url IS NOT NULL
		LIMIT 500
	`
	rows, err := s.db.Query(ctx, query, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []moderation.Candidate
	for rows.Next() {
		var c moderation.Candidate
		if err := rows.Scan(&c.VenueID, &c.Name, &c.City, &c.MapURL); err != nil {
			return nil, err
		}
		pool = append(pool, c)
	}
	return pool, rows.Err()
}
