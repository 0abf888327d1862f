package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BayesianRanking is a row from the precomputed venue_rankings view:
// a shrinkage-adjusted score distinct from the raw average shown next
// to individual venues.
type BayesianRanking struct {
	VenueID       int64   `json:"venue_id"`
	Name          string  `json:"name"`
	City          string  `json:"city"`
	BayesianScore float64 `json:"bayesian_score"`
	Average       float64 `json:"average"`
	RatingCount   int     `json:"rating_count"`
}

type RankingsStore struct {
	db *pgxpool.Pool
}

func (s *RankingsStore) ListBayesian(ctx context.Context, limit int) ([]BayesianRanking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT venue_id, name, city, bayesian_score, avg_score, rating_count
		FROM venue_rankings
		ORDER BY bayesian_score DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rankings []BayesianRanking
	for rows.Next() {
		var r BayesianRanking
		if err := rows.Scan(&r.VenueID, &r.Name, &r.City, &r.BayesianScore, &r.Average, &r.RatingCount); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// HydrateVenues resolves names and cities for an id set. Ids missing
// from the result simply failed to hydrate; callers drop them.
func (s *RankingsStore) HydrateVenues(ctx context.Context, venueIDs []int64) (map[int64]VenueSummary, error) {
	result := make(map[int64]VenueSummary)
	if len(venueIDs) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT id, name, city, cover_image_url FROM venues WHERE id = ANY($1)`
	rows, err := s.db.Query(ctx, query, venueIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v VenueSummary
		if err := rows.Scan(&v.ID, &v.Name, &v.City, &v.CoverImageURL); err != nil {
			return nil, err
		}
		result[v.ID] = v
	}
	return result, rows.Err()
}
