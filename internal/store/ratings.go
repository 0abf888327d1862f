package store

import (
	"context"
	"errors"
	"time"

	"advisoret/internal/ranking"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Criterion is one scoring dimension of a product type's rating form.
// The set is fixed per product type and fetched at rating time.
type Criterion struct {
	ID          int64  `json:"id"`
	ProductType string `json:"product_type"`
	Name        string `json:"name"`
	Position    int    `json:"position"`
}

// CriterionScore is a single 1-5 integer score within a rating.
type CriterionScore struct {
	CriterionID int64 `json:"criterion_id"`
	Score       int   `json:"score"`
}

// Rating is one user's monthly review of one venue for a fixed product
// type. At most one row exists per (user, venue, calendar month).
type Rating struct {
	ID        int64            `json:"id"`
	VenueID   int64            `json:"venue_id"`
	UserID    int64            `json:"user_id"`
	Overall   float64          `json:"overall"`
	Comment   *string          `json:"comment,omitempty"`
	Price     *float64         `json:"price,omitempty"`
	Scores    []CriterionScore `json:"scores"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Joined fields
	UserName  string  `json:"user_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type RatingsStore struct {
	db *pgxpool.Pool
}

func (s *RatingsStore) ListCriteria(ctx context.Context, productType string) ([]Criterion, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, product_type, name, position
		FROM rating_criteria
		WHERE product_type = $1
		ORDER BY position
	`
	rows, err := s.db.Query(ctx, query, productType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.ProductType, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

// GetForMonth returns the user's rating of a venue inside [start, end),
// scores included, or ErrNotFound.
func (s *RatingsStore) GetForMonth(ctx context.Context, userID, venueID int64, start, end time.Time) (*Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT id, venue_id, user_id, overall, comment, price, created_at, updated_at
		FROM ratings
		WHERE user_id = $1 AND venue_id = $2
		  AND created_at >= $3 AND created_at < $4
	`
	var r Rating
	err := s.db.QueryRow(ctx, query, userID, venueID, start, end).Scan(
		&r.ID, &r.VenueID, &r.UserID, &r.Overall, &r.Comment, &r.Price, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if r.Scores, err = s.loadScores(ctx, r.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RatingsStore) loadScores(ctx context.Context, ratingID int64) ([]CriterionScore, error) {
	rows, err := s.db.Query(ctx,
		`SELECT criterion_id, score FROM rating_scores WHERE rating_id = $1 ORDER BY criterion_id`,
		ratingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []CriterionScore
	for rows.Next() {
		var cs CriterionScore
		if err := rows.Scan(&cs.CriterionID, &cs.Score); err != nil {
			return nil, err
		}
		scores = append(scores, cs)
	}
	return scores, rows.Err()
}

// Create inserts the rating and its per-criterion scores in one
// transaction. A unique violation on the monthly constraint surfaces as
// ErrConflict so the caller can fall back to an update.
func (s *RatingsStore) Create(ctx context.Context, rating *Rating) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO ratings (venue_id, user_id, overall, comment, price, month_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query,
		rating.VenueID, rating.UserID, rating.Overall, rating.Comment, rating.Price,
		monthKey(rating.CreatedAt),
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}

	if err := insertScores(ctx, tx, rating.ID, rating.Scores); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update replaces the rating's fields and its score set.
func (s *RatingsStore) Update(ctx context.Context, rating *Rating) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE ratings
		SET overall = $1, comment = $2, price = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at
	`
	err = tx.QueryRow(ctx, query,
		rating.Overall, rating.Comment, rating.Price, rating.ID, rating.UserID,
	).Scan(&rating.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rating_scores WHERE rating_id = $1`, rating.ID); err != nil {
		return err
	}
	if err := insertScores(ctx, tx, rating.ID, rating.Scores); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertScores(ctx context.Context, tx pgx.Tx, ratingID int64, scores []CriterionScore) error {
	for _, cs := range scores {
		_, err := tx.Exec(ctx,
			`INSERT INTO rating_scores (rating_id, criterion_id, score) VALUES ($1, $2, $3)`,
			ratingID, cs.CriterionID, ranking.ClampScore(cs.Score),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *RatingsStore) ListByVenue(ctx context.Context, venueID int64) ([]Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT r.id, r.venue_id, r.user_id, r.overall, r.comment, r.price,
		       r.created_at, r.updated_at, p.name, p.avatar_url
		FROM ratings r
		JOIN profiles p ON p.id = r.user_id
		WHERE r.venue_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := s.db.Query(ctx, query, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(
			&r.ID, &r.VenueID, &r.UserID, &r.Overall, &r.Comment, &r.Price,
			&r.CreatedAt, &r.UpdatedAt, &r.UserName, &r.AvatarURL,
		); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range ratings {
		scores, err := s.loadScores(ctx, ratings[i].ID)
		if err != nil {
			return nil, err
		}
		ratings[i].Scores = scores
	}
	return ratings, nil
}

func (s *RatingsStore) Delete(ctx context.Context, ratingID, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM ratings WHERE id = $1 AND user_id = $2`, ratingID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MonthEntries feeds the client-side fallback aggregation: the raw
// per-rating overall scores created inside [start, end).
func (s *RatingsStore) MonthEntries(ctx context.Context, start, end time.Time) ([]ranking.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT venue_id, overall, created_at
		FROM ratings
		WHERE created_at >= $1 AND created_at < $2
	`
	rows, err := s.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ranking.Entry
	for rows.Next() {
		var e ranking.Entry
		if err := rows.Scan(&e.VenueID, &e.Score, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// monthKey backs the uniqueness constraint that guards the one rating
// per (user, venue, month) invariant against concurrent inserts.
func monthKey(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("2006-01")
}
