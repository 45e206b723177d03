package store

import (
	"context"
	"database/sql"
	"time"

	users "github.com/AdamBeresnev/doubles-bracket/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = "id, email, username, provider, provider_id, avatar_url, created_at"

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByProvider looks up an OAuth account. Guests never match since their
// provider columns are NULL.
func (s *UserStore) FindByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	var user users.User
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE provider = ? AND provider_id = ?`)
	if err := s.db.GetContext(ctx, &user, query, provider, providerID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, tx *sqlx.Tx, user *users.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :username, :provider, :provider_id, :avatar_url, :created_at)`, user)
	return err
}

// RefreshProfile copies the provider's current display name and avatar.
func (s *UserStore) RefreshProfile(ctx context.Context, id uuid.UUID, username string, avatarURL *string) error {
	query := s.db.Rebind(`UPDATE users SET username = ?, avatar_url = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, username, avatarURL, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, sql.ErrNoRows)
}
