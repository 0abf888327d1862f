package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VenueReport is a user-submitted request to correct or flag an
// existing venue's data. Same lifecycle as proposals.
type VenueReport struct {
	ID             int64            `json:"id"`
	VenueID        int64            `json:"venue_id"`
	UserID         int64            `json:"user_id"`
	Message        string           `json:"message"`
	Status         SubmissionStatus `json:"status"`
	ResolutionNote *string          `json:"resolution_note,omitempty"`
	ReviewedBy     *int64           `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Joined fields
	VenueName string `json:"venue_name,omitempty"`
}

type ReportsStore struct {
	db *pgxpool.Pool
}

func (s *ReportsStore) Create(ctx context.Context, report *VenueReport) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO venue_reports (venue_id, user_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query, report.VenueID, report.UserID, report.Message).
		Scan(&report.ID, &report.Status, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create venue report: %w", err)
	}
	return nil
}

func (s *ReportsStore) GetByID(ctx context.Context, reportID int64) (*VenueReport, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT r.id, r.venue_id, r.user_id, r.message, r.status, r.resolution_note,
		       r.reviewed_by, r.reviewed_at, r.created_at, r.updated_at, v.name
		FROM venue_reports r
		JOIN venues v ON v.id = r.venue_id
		WHERE r.id = $1
	`
	var r VenueReport
	err := s.db.QueryRow(ctx, query, reportID).Scan(
		&r.ID, &r.VenueID, &r.UserID, &r.Message, &r.Status, &r.ResolutionNote,
		&r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt, &r.UpdatedAt, &r.VenueName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *ReportsStore) List(ctx context.Context, filter SubmissionFilter) ([]VenueReport, error) {
	filter.normalize()

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		SELECT r.id, r.venue_id, r.user_id, r.message, r.status, r.resolution_note,
		       r.reviewed_by, r.reviewed_at, r.created_at, r.updated_at, v.name
		FROM venue_reports r
		JOIN venues v ON v.id = r.venue_id
	`
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" WHERE r.status = $%d", len(args))
	}
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []VenueReport
	for rows.Next() {
		var r VenueReport
		if err := rows.Scan(
			&r.ID, &r.VenueID, &r.UserID, &r.Message, &r.Status, &r.ResolutionNote,
			&r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt, &r.UpdatedAt, &r.VenueName,
		); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Resolve closes a pending report as approved or rejected. Reports
// already resolved come back as ErrConflict.
func (s *ReportsStore) Resolve(ctx context.Context, reportID, reviewerID int64, status SubmissionStatus, note *string) error {
	if status != SubmissionApproved && status != SubmissionRejected {
		return fmt.Errorf("invalid resolution status: %s", status)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE venue_reports
		SET status = $1, resolution_note = $2, reviewed_by = $3, reviewed_at = now(), updated_at = now()
		WHERE id = $4 AND status = 'pending'
	`
	tag, err := s.db.Exec(ctx, query, status, note, reviewerID, reportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetByID(ctx, reportID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (s *ReportsStore) CountPending(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM venue_reports WHERE status = 'pending'`).Scan(&count)
	return count, err
}
