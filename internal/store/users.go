package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	ErrDuplicateUsername = errors.New("a user with that username already exists")
)

// AdminFallbackEmail is the single hardcoded address treated as admin
// when a profile's admin flag is absent. A deployed safety net, not a
// general policy; see HasAdminAccess.
const AdminFallbackEmail = "soporte@advisoret.app"

type User struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  password `json:"-"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
	// IsAdmin is nullable on purpose: the fallback below only applies
	// when the flag is absent, never when it is explicitly false.
	IsAdmin          *bool     `json:"is_admin,omitempty"`
	IsActive         bool      `json:"is_active"`
	LoginCodeHash    string    `json:"-"`
	LoginCodeExpires time.Time `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserSummary is the public slice of a profile used in lists.
type UserSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// HasAdminAccess reports whether this profile gets moderation
// privileges: the admin flag when present, otherwise the hardcoded
// fallback email compared case-insensitively.
func (u *User) HasAdminAccess() bool {
	if u.IsAdmin != nil {
		return *u.IsAdmin
	}
	return strings.EqualFold(strings.TrimSpace(u.Email), AdminFallbackEmail)
}

// Role maps the profile onto the JWT role claim.
func (u *User) Role() string {
	if u.HasAdminAccess() {
		return "admin"
	}
	return "user"
}

// password stores the bcrypt hash alongside the plaintext for the
// lifetime of the request only.
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type UsersStore struct {
	db *pgxpool.Pool
}

func (s *UsersStore) create(ctx context.Context, tx pgx.Tx, user *User) error {
	query := `
		INSERT INTO profiles (name, username, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := tx.QueryRow(
		ctx, query, user.Name, user.Username, user.Email, user.Password.hash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "profiles_email_key":
				return ErrDuplicateEmail
			case "profiles_username_key":
				return ErrDuplicateUsername
			}
		}
		return err
	}
	return nil
}

// CreateAndInvite creates the profile row and its activation invitation
// in one transaction so a failed invite never leaves an orphan profile.
func (s *UsersStore) CreateAndInvite(ctx context.Context, user *User, token string, invitationExp time.Duration) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.create(ctx, tx, user); err != nil {
		return err
	}

	query := `
		INSERT INTO user_invitations (token, user_id, expiry)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, query, token, user.ID, time.Now().Add(invitationExp)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Activate flips the profile active and burns the invitation token.
func (s *UsersStore) Activate(ctx context.Context, token string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var userID int64
	query := `
		SELECT user_id FROM user_invitations
		WHERE token = $1 AND expiry > now()
	`
	if err := tx.QueryRow(ctx, query, token).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE profiles SET is_active = true, updated_at = now() WHERE id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_invitations WHERE user_id = $1`, userID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const userColumns = `
	id, name, username, email, password, avatar_url, is_admin, is_active,
	COALESCE(login_code_hash, ''), COALESCE(login_code_expires, 'epoch'::timestamptz),
	created_at, updated_at
`

func (s *UsersStore) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.Password.hash,
		&u.AvatarURL, &u.IsAdmin, &u.IsActive,
		&u.LoginCodeHash, &u.LoginCodeExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *UsersStore) GetByID(ctx context.Context, userID int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM profiles WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, query, userID))
}

func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM profiles WHERE lower(email) = lower($1) AND is_active = true`
	return s.scanUser(s.db.QueryRow(ctx, query, email))
}

func (s *UsersStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM profiles WHERE lower(username) = lower($1)`
	return s.scanUser(s.db.QueryRow(ctx, query, username))
}

// UpdateProfile patches the allowed display fields only.
func (s *UsersStore) UpdateProfile(ctx context.Context, userID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	for key, value := range updates {
		switch key {
		case "name", "username":
			args = append(args, value)
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, len(args)))
		default:
			return fmt.Errorf("unsupported field: %s", key)
		}
	}

	args = append(args, userID)
	query := fmt.Sprintf(
		"UPDATE profiles SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args),
	)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
	}
	return err
}

func (s *UsersStore) SetAvatar(ctx context.Context, userID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE profiles SET avatar_url = $1, updated_at = now() WHERE id = $2`, url, userID)
	return err
}

func (s *UsersStore) GetAvatarURL(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var url *string
	err := s.db.QueryRow(ctx, `SELECT avatar_url FROM profiles WHERE id = $1`, userID).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if url == nil {
		return "", nil
	}
	return *url, nil
}

func (s *UsersStore) Delete(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, userID)
	return err
}

// SaveRefreshToken records the latest issued refresh token. One active
// refresh token per profile; issuing a new one invalidates the old.
func (s *UsersStore) SaveRefreshToken(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `UPDATE profiles SET refresh_token = $1, updated_at = now() WHERE id = $2`
	_, err := s.db.Exec(ctx, query, token, userID)
	return err
}

func (s *UsersStore) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var token *string
	err := s.db.QueryRow(ctx, `SELECT refresh_token FROM profiles WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

func (s *UsersStore) DeleteRefreshToken(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `UPDATE profiles SET refresh_token = NULL, updated_at = now() WHERE id = $1`
	_, err := s.db.Exec(ctx, query, userID)
	return err
}

// SetLoginCode stores the hash of a one-time email login code.
func (s *UsersStore) SetLoginCode(ctx context.Context, userID int64, codeHash string, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE profiles
		SET login_code_hash = $1, login_code_expires = $2, updated_at = now()
		WHERE id = $3
	`
	_, err := s.db.Exec(ctx, query, codeHash, expiry, userID)
	return err
}

// ConsumeLoginCode exchanges a valid, unexpired code for the profile and
// clears it so the code is single-use.
func (s *UsersStore) ConsumeLoginCode(ctx context.Context, email, codeHash string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE profiles
		SET login_code_hash = NULL, login_code_expires = NULL, updated_at = now()
		WHERE lower(email) = lower($1)
		  AND login_code_hash = $2
		  AND login_code_expires > now()
		RETURNING ` + userColumns

	return s.scanUser(s.db.QueryRow(ctx, query, email, codeHash))
}
