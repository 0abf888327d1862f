package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"advisoret/internal/moderation"
	"advisoret/internal/ranking"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		CreateAndInvite(ctx context.Context, user *User, token string, invitationExp time.Duration) error
		Activate(ctx context.Context, token string) error
		GetByID(ctx context.Context, userID int64) (*User, error)
		GetByEmail(ctx context.Context, email string) (*User, error)
		GetByUsername(ctx context.Context, username string) (*User, error)
		UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) error
		SetAvatar(ctx context.Context, userID int64, url string) error
		GetAvatarURL(ctx context.Context, userID int64) (string, error)
		Delete(ctx context.Context, userID int64) error
		SaveRefreshToken(ctx context.Context, userID int64, token string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
		SetLoginCode(ctx context.Context, userID int64, codeHash string, expiry time.Time) error
		ConsumeLoginCode(ctx context.Context, email, codeHash string) (*User, error)
	}
	Venues interface {
		GetByID(ctx context.Context, venueID int64) (*Venue, error)
		List(ctx context.Context, filter VenueFilter) ([]Venue, error)
		ListWithCoordinates(ctx context.Context, limit int) ([]Venue, error)
		Create(ctx context.Context, venue *Venue) error
		Update(ctx context.Context, venueID int64, updates map[string]interface{}) error
		SetCoverImage(ctx context.Context, venueID int64, url string) error
		ClearCoverImage(ctx context.Context, venueID int64) error
		GetRatingStats(ctx context.Context, venueID int64) (int, float64, error)
		DedupePool(ctx context.Context, city string) ([]moderation.Candidate, error)
	}
	Ratings interface {
		ListCriteria(ctx context.Context, productType string) ([]Criterion, error)
		GetForMonth(ctx context.Context, userID, venueID int64, start, end time.Time) (*Rating, error)
		Create(ctx context.Context, rating *Rating) error
		Update(ctx context.Context, rating *Rating) error
		ListByVenue(ctx context.Context, venueID int64) ([]Rating, error)
		Delete(ctx context.Context, ratingID, userID int64) error
		MonthEntries(ctx context.Context, start, end time.Time) ([]ranking.Entry, error)
	}
	Rankings interface {
		ListBayesian(ctx context.Context, limit int) ([]BayesianRanking, error)
		HydrateVenues(ctx context.Context, venueIDs []int64) (map[int64]VenueSummary, error)
	}
	Followers interface {
		Follow(ctx context.Context, followerID, userID int64) error
		Unfollow(ctx context.Context, followerID, userID int64) error
		IsFollowing(ctx context.Context, followerID, userID int64) (bool, error)
		ListFollowers(ctx context.Context, userID int64) ([]UserSummary, error)
		ListFollowing(ctx context.Context, userID int64) ([]UserSummary, error)
	}
	Kudos interface {
		Toggle(ctx context.Context, userID, ratingID int64) (bool, error)
		Count(ctx context.Context, ratingID int64) (int, error)
		CountMany(ctx context.Context, ratingIDs []int64) (map[int64]int, error)
		HasKudos(ctx context.Context, userID, ratingID int64) (bool, error)
	}
	Proposals interface {
		Create(ctx context.Context, proposal *VenueProposal) error
		GetByID(ctx context.Context, proposalID int64) (*VenueProposal, error)
		List(ctx context.Context, filter SubmissionFilter) ([]VenueProposal, error)
		MarkApproved(ctx context.Context, proposalID, reviewerID int64, note *string) error
		MarkRejected(ctx context.Context, proposalID, reviewerID int64, note *string) error
		CountPending(ctx context.Context) (int, error)
	}
	Reports interface {
		Create(ctx context.Context, report *VenueReport) error
		GetByID(ctx context.Context, reportID int64) (*VenueReport, error)
		List(ctx context.Context, filter SubmissionFilter) ([]VenueReport, error)
		Resolve(ctx context.Context, reportID, reviewerID int64, status SubmissionStatus, note *string) error
		CountPending(ctx context.Context) (int, error)
	}
	PushTokens interface {
		AddOrUpdatePushToken(ctx context.Context, userID int64, token string, deviceInfo json.RawMessage) error
		RemovePushToken(ctx context.Context, userID int64, token string) error
		GetTokensByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db},
		Venues:     &VenuesStore{db},
		Ratings:    &RatingsStore{db},
		Rankings:   &RankingsStore{db},
		Followers:  &FollowerStore{db},
		Kudos:      &KudosStore{db},
		Proposals:  &ProposalsStore{db},
		Reports:    &ReportsStore{db},
		PushTokens: &PushTokensStore{db},
	}
}
