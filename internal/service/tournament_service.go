package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Two full teams make the smallest bracket.
const minPlayers = 4

type TournamentService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	events   Publisher
	shuffler bracket.Shuffler
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, events Publisher, rng *rand.Rand) *TournamentService {
	return &TournamentService{
		db:       db,
		store:    store,
		events:   events,
		shuffler: &lockedShuffler{rng: rng},
	}
}

type TournamentData struct {
	Tournament *bracket.Tournament
	Players    []bracket.Player
	State      *bracket.State
}

type StartResult struct {
	Matches []bracket.Match
	Teams   []bracket.Team
	// Odd player out, if any
	Unused []bracket.Player
}

func (s *TournamentService) CreateTournament(ctx context.Context, ownerID uuid.UUID, name string) (*bracket.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament := &bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Status:  bracket.StatusSignup,
	}
	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("tournament created", "tournament_id", tournament.ID, "owner_id", ownerID)
	publish(s.events, realtime.CollectionTournaments, realtime.ActionCreate, tournament.ID, tournament.ID)
	return tournament, nil
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	return s.store.GetTournamentsByOwner(ctx, ownerID)
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return tournament, nil
}

// GetTournamentData loads the tournament, its roster and its bracket.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	var (
		tournament *bracket.Tournament
		players    []bracket.Player
		matches    []bracket.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.GetTournament(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.store.GetPlayers(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to get players: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.store.GetMatches(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to get matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TournamentData{
		Tournament: tournament,
		Players:    players,
		State:      bracket.NewState(matches),
	}, nil
}

// StartTournament closes signup, forms the teams and stores round 1. The status
// change, the roster read and the matches share one transaction, so a player
// who signs up concurrently is either in the draw or turned away. A playing
// tournament whose bracket was reset can be started again.
func (s *TournamentService) StartTournament(ctx context.Context, ownerID, id uuid.UUID) (*StartResult, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tournament.IsOwnedBy(ownerID) {
		return nil, ErrForbiddenOperation
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	err = s.store.UpdateTournamentStatusTx(ctx, tx, id, tournament.Status, bracket.StatusPlaying)
	if errors.Is(err, store.ErrStaleWrite) {
		return nil, ErrTournamentAlreadyStarted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}

	if tournament.Status != bracket.StatusSignup {
		count, err := s.store.CountMatchesTx(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count matches: %w", err)
		}
		if count > 0 {
			return nil, ErrTournamentAlreadyStarted
		}
	}

	players, err := s.store.GetPlayersTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	if len(players) < minPlayers {
		return nil, ErrNotEnoughPlayers
	}

	formation := bracket.FormTeams(players, s.shuffler)
	matches := bracket.FirstRound(id, formation.Teams)

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create first round: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for _, p := range formation.Unused {
		slog.Warn("player left without a partner", "tournament_id", id, "player_id", p.ID, "player_name", p.Name)
	}
	slog.Info("tournament started", "tournament_id", id, "teams", len(formation.Teams), "matches", len(matches))

	publish(s.events, realtime.CollectionTournaments, realtime.ActionUpdate, id, id)
	publish(s.events, realtime.CollectionMatches, realtime.ActionCreate, id, uuid.Nil)

	return &StartResult{
		Matches: matches,
		Teams:   formation.Teams,
		Unused:  formation.Unused,
	}, nil
}

// ResetBracket drops every match so the tournament can be started again with
// freshly formed teams. Signup stays closed.
func (s *TournamentService) ResetBracket(ctx context.Context, ownerID, id uuid.UUID) (int64, error) {
	tournament, err := s.GetTournament(ctx, id)
	if err != nil {
		return 0, err
	}
	if !tournament.IsOwnedBy(ownerID) {
		return 0, ErrForbiddenOperation
	}
	if tournament.Status != bracket.StatusPlaying {
		return 0, ErrTournamentNotPlaying
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	deleted, err := s.store.DeleteMatches(ctx, tx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	slog.Info("bracket reset", "tournament_id", id, "deleted_matches", deleted)
	publish(s.events, realtime.CollectionMatches, realtime.ActionDelete, id, uuid.Nil)
	return deleted, nil
}
