package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	users "github.com/AdamBeresnev/doubles-bracket/internal/user"
	"github.com/AdamBeresnev/doubles-bracket/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
)

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	username := gothUser.NickName
	if username == "" {
		username = gothUser.Name
	}

	user, err := s.store.FindByProvider(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != username {
			user.Username = username
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			if err := s.store.RefreshProfile(ctx, user.ID, user.Username, user.AvatarURL); err != nil {
				// Stale profile data is not worth failing a login over
				slog.Warn("failed to refresh user profile", "user_id", user.ID, "error", err)
			}
		}
		return user, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	newUser := &users.User{
		ID:         uuid.New(),
		Email:      gothUser.Email,
		Username:   username,
		Provider:   utils.Ptr(gothUser.Provider),
		ProviderID: utils.Ptr(gothUser.UserID),
		AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
	}
	if err := s.createUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user created", "user_id", newUser.ID, "provider", gothUser.Provider)
	return newUser, nil
}

// CreateGuestUser makes a fresh account for someone who skipped OAuth. Each
// guest session owns its own tournaments.
func (s *UserService) CreateGuestUser(ctx context.Context) (*users.User, error) {
	id := uuid.New()
	guest := &users.User{
		ID:       id,
		Email:    fmt.Sprintf("guest-%s@doubles.local", id),
		Username: "Guest",
	}
	if err := s.createUser(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	return guest, nil
}

func (s *UserService) createUser(ctx context.Context, user *users.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.CreateUser(ctx, tx, user); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	return user, err
}
