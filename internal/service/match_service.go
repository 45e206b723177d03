package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db     *sqlx.DB
	store  *store.TournamentStore
	events Publisher
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, events Publisher) *MatchService {
	return &MatchService{db: db, store: store, events: events}
}

// Advancement is what a recorded result did to the bracket.
type Advancement struct {
	Match bracket.Match
	// Matches of later rounds created by this call
	Created []bracket.Match
	State   *bracket.State
	// Set once the final has been decided
	Champion *bracket.Team
}

// SelectWinner records the winning team of a match and builds the next round
// once every match of the current one is decided. Every check runs before the
// first write. Selecting the recorded winner again only repairs missing
// next-round matches, which is how a failed advancement is retried.
func (s *MatchService) SelectWinner(ctx context.Context, ownerID, tournamentID, matchID uuid.UUID, team bracket.TeamSlot) (*Advancement, error) {
	if !team.Valid() {
		return nil, ErrInvalidTeam
	}

	if err := s.checkOrganizer(ctx, ownerID, tournamentID); err != nil {
		return nil, err
	}

	match, err := s.store.GetMatch(ctx, tournamentID, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if match.IsBye() && team == bracket.Team2 {
		return nil, ErrByeHasNoOpponent
	}
	if match.TeamAt(team) == nil {
		slog.Error("match is missing the selected team", "tournament_id", tournamentID, "match_id", matchID, "round", match.Round, "team", team)
		return nil, fmt.Errorf("%w: match %s has no team %d", ErrInconsistentBracket, match.ID, team)
	}

	switch {
	case !match.Decided():
		if err := s.recordWinner(ctx, tournamentID, matchID, team); err != nil {
			return nil, err
		}
		match.WinningTeam = team
		slog.Info("match decided", "tournament_id", tournamentID, "match_id", matchID, "round", match.Round, "winning_team", team)
		publish(s.events, realtime.CollectionMatches, realtime.ActionUpdate, tournamentID, matchID)
	case match.WinningTeam != team:
		return nil, ErrMatchAlreadyDecided
	}

	created, state, err := s.advance(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	result := &Advancement{
		Match:   *match,
		Created: created,
		State:   state,
	}
	if champion, ok := state.Champion(); ok {
		result.Champion = &champion
	}
	return result, nil
}

// Reconcile creates every next-round match that should exist but does not.
func (s *MatchService) Reconcile(ctx context.Context, ownerID, tournamentID uuid.UUID) ([]bracket.Match, error) {
	if err := s.checkOrganizer(ctx, ownerID, tournamentID); err != nil {
		return nil, err
	}

	created, _, err := s.advance(ctx, tournamentID)
	return created, err
}

func (s *MatchService) checkOrganizer(ctx context.Context, ownerID, tournamentID uuid.UUID) error {
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
	if tournament.Status != bracket.StatusPlaying {
		return ErrTournamentNotPlaying
	}
	return nil
}

func (s *MatchService) recordWinner(ctx context.Context, tournamentID, matchID uuid.UUID, team bracket.TeamSlot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = s.store.UpdateMatchWinner(ctx, tx, tournamentID, matchID, team)
	if errors.Is(err, store.ErrStaleWrite) {
		// Someone else decided the match since it was read
		return ErrMatchAlreadyDecided
	}
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return tx.Commit()
}

// advance reads the bracket in a transaction and inserts whatever later-round
// matches are missing.
func (s *MatchService) advance(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, *bracket.State, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	matches, err := s.store.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get matches: %w", err)
	}

	state := bracket.NewState(matches)
	var created []bracket.Match
	for _, round := range state.Rounds() {
		missing, err := missingNextRound(tournamentID, state, round)
		if err != nil {
			slog.Error("cannot advance bracket", "tournament_id", tournamentID, "round", round, "error", err)
			return nil, nil, err
		}
		if len(missing) == 0 {
			continue
		}

		if err := s.store.CreateMatches(ctx, tx, missing); err != nil {
			return nil, nil, fmt.Errorf("failed to create round %d: %w", round+1, err)
		}
		created = append(created, missing...)
		matches = append(matches, missing...)
		state = bracket.NewState(matches)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	if len(created) > 0 {
		slog.Info("next round created", "tournament_id", tournamentID, "round", created[0].Round, "matches", len(created))
		publish(s.events, realtime.CollectionMatches, realtime.ActionCreate, tournamentID, uuid.Nil)
	}
	return created, state, nil
}

// missingNextRound compares the matches a complete round should feed with the
// ones already stored for round+1, by order. A stored match with a different
// pairing means the bracket no longer follows its own results.
func missingNextRound(tournamentID uuid.UUID, state *bracket.State, round int) ([]bracket.Match, error) {
	current := state.MatchesForRound(round)
	if !bracket.RoundComplete(current) {
		return nil, nil
	}

	expected, err := bracket.NextRound(tournamentID, round, current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInconsistentBracket, err)
	}

	existing := make(map[int]bracket.Match)
	for _, m := range state.MatchesForRound(round + 1) {
		existing[m.Order] = m
	}
	if len(existing) > len(expected) {
		return nil, fmt.Errorf("%w: round %d has %d matches, expected %d", ErrInconsistentBracket, round+1, len(existing), len(expected))
	}

	var missing []bracket.Match
	for _, m := range expected {
		stored, ok := existing[m.Order]
		if !ok {
			missing = append(missing, m)
			continue
		}
		if !stored.SamePairing(m) {
			return nil, fmt.Errorf("%w: match %d of round %d does not follow from round %d", ErrInconsistentBracket, m.Order, round+1, round)
		}
	}
	return missing, nil
}
