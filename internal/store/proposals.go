package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubmissionStatus is the shared lifecycle of proposals and reports.
// Transitions happen only from pending, only by explicit admin action.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

type SubmissionFilter struct {
	Status *SubmissionStatus
	Page   int
	Limit  int
}

func (f *SubmissionFilter) normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 60 {
		f.Limit = 20
	}
}

// VenueProposal is a user-submitted request to add a new venue.
type VenueProposal struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	Name           string           `json:"name"`
	City           string           `json:"city"`
	Address        string           `json:"address"`
	MapURL         *string          `json:"map_url,omitempty"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	Note           *string          `json:"note,omitempty"`
	Status         SubmissionStatus `json:"status"`
	ResolutionNote *string          `json:"resolution_note,omitempty"`
	ReviewedBy     *int64           `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type ProposalsStore struct {
	db *pgxpool.Pool
}

const proposalColumns = `
	id, user_id, name, city, address, map_url, latitude, longitude, note,
	status, resolution_note, reviewed_by, reviewed_at, created_at, updated_at
`

func (s *ProposalsStore) Create(ctx context.Context, proposal *VenueProposal) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		INSERT INTO venue_proposals (user_id, name, city, address, map_url, latitude, longitude, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		proposal.UserID, proposal.Name, proposal.City, proposal.Address,
		proposal.MapURL, proposal.Latitude, proposal.Longitude, proposal.Note,
	).Scan(&proposal.ID, &proposal.Status, &proposal.CreatedAt, &proposal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create venue proposal: %w", err)
	}
	return nil
}

func (s *ProposalsStore) GetByID(ctx context.Context, proposalID int64) (*VenueProposal, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + proposalColumns + ` FROM venue_proposals WHERE id = $1`

	var p VenueProposal
	err := s.db.QueryRow(ctx, query, proposalID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.City, &p.Address, &p.MapURL, &p.Latitude, &p.Longitude, &p.Note,
		&p.Status, &p.ResolutionNote, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *ProposalsStore) List(ctx context.Context, filter SubmissionFilter) ([]VenueProposal, error) {
	filter.normalize()

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + proposalColumns + ` FROM venue_proposals`
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []VenueProposal
	for rows.Next() {
		var p VenueProposal
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.City, &p.Address, &p.MapURL, &p.Latitude, &p.Longitude, &p.Note,
			&p.Status, &p.ResolutionNote, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

func (s *ProposalsStore) MarkApproved(ctx context.Context, proposalID, reviewerID int64, note *string) error {
	return s.transition(ctx, proposalID, reviewerID, SubmissionApproved, note)
}

func (s *ProposalsStore) MarkRejected(ctx context.Context, proposalID, reviewerID int64, note *string) error {
	return s.transition(ctx, proposalID, reviewerID, SubmissionRejected, note)
}

// transition moves a proposal out of pending. The WHERE clause is the
// guard: a proposal already resolved is left untouched and reported as
// ErrConflict.
func (s *ProposalsStore) transition(ctx context.Context, proposalID, reviewerID int64, status SubmissionStatus, note *string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE venue_proposals
		SET status = $1, resolution_note = $2, reviewed_by = $3, reviewed_at = now(), updated_at = now()
		WHERE id = $4 AND status = 'pending'
	`
	tag, err := s.db.Exec(ctx, query, status, note, reviewerID, proposalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetByID(ctx, proposalID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (s *ProposalsStore) CountPending(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM venue_proposals WHERE status = 'pending'`).Scan(&count)
	return count, err
}
