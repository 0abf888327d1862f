package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// KudosStore manages the like-style edges between users and ratings.
type KudosStore struct {
	db *pgxpool.Pool
}

// Toggle flips the kudos edge: inserts it if missing, deletes it
// otherwise. Returns whether the edge exists after the call.
func (s *KudosStore) Toggle(ctx context.Context, userID, ratingID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	insert := `
		INSERT INTO kudos (user_id, rating_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	tag, err := s.db.Exec(ctx, insert, userID, ratingID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	_, err = s.db.Exec(ctx, `DELETE FROM kudos WHERE user_id = $1 AND rating_id = $2`, userID, ratingID)
	return false, err
}

func (s *KudosStore) Count(ctx context.Context, ratingID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM kudos WHERE rating_id = $1`, ratingID).Scan(&count)
	return count, err
}

// CountMany returns counts for a batch of ratings in one query. Ratings
// with no kudos are absent from the map.
func (s *KudosStore) CountMany(ctx context.Context, ratingIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int)
	if len(ratingIDs) == 0 {
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT rating_id, COUNT(*)
		FROM kudos
		WHERE rating_id = ANY($1)
		GROUP BY rating_id
	`
	rows, err := s.db.Query(ctx, query, ratingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		result[id] = count
	}
	return result, rows.Err()
}

func (s *KudosStore) HasKudos(ctx context.Context, userID, ratingID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM kudos WHERE user_id = $1 AND rating_id = $2
		)
	`
	err := s.db.QueryRow(ctx, query, userID, ratingID).Scan(&exists)
	return exists, err
}
