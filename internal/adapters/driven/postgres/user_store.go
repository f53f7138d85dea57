package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/trellis-labs/authgate/internal/core/domain"
	"github.com/trellis-labs/authgate/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

// UserStore implements driven.UserStore using PostgreSQL
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create persists a new user. The unique constraints on username and email
// are the final authority on uniqueness.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

// GetByUsername retrieves a user by username
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getBy(ctx, "username", username)
}

// GetByEmail retrieves a user by email
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	query := `
		SELECT id, first_name, last_name, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE ` + column + ` = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetWithSession retrieves a user by username joined with the single session
// matching sessionID. The session is nil when the user owns no such session.
func (s *UserStore) GetWithSession(ctx context.Context, username, sessionID string) (*domain.User, *domain.Session, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.username, u.email, u.password_hash, u.created_at, u.updated_at,
		       s.id, s.user_id, s.token_hash, s.ip_address, s.device, s.created_at, s.updated_at
		FROM users u
		LEFT JOIN sessions s ON s.user_id = u.id AND s.id = $2
		WHERE u.username = $1
	`

	var user domain.User
	var session domain.Session
	var sessionIDCol, sessionUserID, tokenHash, ipAddress, device sql.NullString
	var sessionCreated, sessionUpdated sql.NullTime

	err := s.db.QueryRowContext(ctx, query, username, sessionID).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
		&sessionIDCol,
		&sessionUserID,
		&tokenHash,
		&ipAddress,
		&device,
		&sessionCreated,
		&sessionUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if !sessionIDCol.Valid {
		return &user, nil, nil
	}

	session.ID = sessionIDCol.String
	session.UserID = sessionUserID.String
	session.TokenHash = tokenHash.String
	session.IPAddress = ipAddress.String
	session.Device = device.String
	session.CreatedAt = sessionCreated.Time
	session.UpdatedAt = sessionUpdated.Time

	return &user, &session, nil
}
