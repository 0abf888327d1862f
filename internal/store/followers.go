package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Follower struct {
	UserID     int64  `json:"user_id"`
	FollowerID int64  `json:"follower_id"`
	CreatedAt  string `json:"created_at"`
}

type FollowerStore struct {
	db *pgxpool.Pool
}

func (s *FollowerStore) Follow(ctx context.Context, followerID, userID int64) error {
	query := `
		INSERT INTO followers (user_id, follower_id) VALUES ($1, $2)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, followerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

func (s *FollowerStore) Unfollow(ctx context.Context, followerID, userID int64) error {
	query := `
		DELETE FROM followers
		WHERE user_id = $1 AND follower_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, followerID)
	return err
}

func (s *FollowerStore) IsFollowing(ctx context.Context, followerID, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM followers WHERE user_id = $1 AND follower_id = $2
		)
	`
	err := s.db.QueryRow(ctx, query, userID, followerID).Scan(&exists)
	return exists, err
}

func (s *FollowerStore) ListFollowers(ctx context.Context, userID int64) ([]UserSummary, error) {
	query := `
		SELECT p.id, p.name, p.username, p.avatar_url
		FROM followers f
		JOIN profiles p ON p.id = f.follower_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	return s.listProfiles(ctx, query, userID)
}

func (s *FollowerStore) ListFollowing(ctx context.Context, userID int64) ([]UserSummary, error) {
	query := `
		SELECT p.id, p.name, p.username, p.avatar_url
		FROM followers f
		JOIN profiles p ON p.id = f.user_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`
	return s.listProfiles(ctx, query, userID)
}

func (s *FollowerStore) listProfiles(ctx context.Context, query string, userID int64) ([]UserSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []UserSummary
	for rows.Next() {
		var p UserSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Username, &p.AvatarURL); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
