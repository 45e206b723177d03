package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxPlayerNameLength = 50

type PlayerService struct {
	db     *sqlx.DB
	store  *store.TournamentStore
	events Publisher
}

func NewPlayerService(db *sqlx.DB, store *store.TournamentStore, events Publisher) *PlayerService {
	return &PlayerService{db: db, store: store, events: events}
}

func validatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrPlayerNameRequired
	}
	if utf8.RuneCountInString(name) > maxPlayerNameLength {
		return "", ErrPlayerNameTooLong
	}
	return name, nil
}

// RegisterPlayer signs a player up while the tournament is still taking names.
func (s *PlayerService) RegisterPlayer(ctx context.Context, tournamentID uuid.UUID, name string) (*bracket.Player, error) {
	name, err := validatePlayerName(name)
	if err != nil {
		return nil, err
	}

	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if tournament.Status != bracket.StatusSignup {
		return nil, ErrRegistrationClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.holdSignup(ctx, tx, tournamentID); err != nil {
		return nil, err
	}

	player := &bracket.Player{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         name,
	}
	if err := s.store.CreatePlayer(ctx, tx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("player registered", "tournament_id", tournamentID, "player_id", player.ID)
	publish(s.events, realtime.CollectionPlayers, realtime.ActionCreate, tournamentID, player.ID)
	return player, nil
}

// RemovePlayer lets the organizer drop a player before teams are formed.
func (s *PlayerService) RemovePlayer(ctx context.Context, ownerID, tournamentID, playerID uuid.UUID) error {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get tournament: %w", err)
	}
	if !tournament.IsOwnedBy(ownerID) {
		return ErrForbiddenOperation
	}
	if tournament.Status != bracket.StatusSignup {
		return ErrRegistrationClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.holdSignup(ctx, tx, tournamentID); err != nil {
		return err
	}

	err = s.store.DeletePlayer(ctx, tx, tournamentID, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	publish(s.events, realtime.CollectionPlayers, realtime.ActionDelete, tournamentID, playerID)
	return nil
}

// holdSignup locks the tournament row for the rest of tx while signup is open,
// so roster changes cannot interleave with StartTournament.
func (s *PlayerService) holdSignup(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) error {
	err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.StatusSignup, bracket.StatusSignup)
	if errors.Is(err, store.ErrStaleWrite) {
		return ErrRegistrationClosed
	}
	if err != nil {
		return fmt.Errorf("failed to check signup: %w", err)
	}
	return nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id uuid.UUID) (*bracket.Player, error) {
	player, err := s.store.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (s *PlayerService) GetPlayers(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Player, error) {
	players, err := s.store.GetPlayers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	return players, nil
}
