package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrStaleWrite is returned when a guarded update matched no rows because the
// record changed since it was read.
var ErrStaleWrite = errors.New("record was changed concurrently")

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// Teams are stored flat, two nullable player columns per slot
type matchRow struct {
	ID             uuid.UUID  `db:"id"`
	TournamentID   uuid.UUID  `db:"tournament_id"`
	Round          int        `db:"round"`
	MatchOrder     int        `db:"match_order"`
	Team1Player1ID *uuid.UUID `db:"team1_player1_id"`
	Team1Player2ID *uuid.UUID `db:"team1_player2_id"`
	Team2Player1ID *uuid.UUID `db:"team2_player1_id"`
	Team2Player2ID *uuid.UUID `db:"team2_player2_id"`
	WinningTeam    int        `db:"winning_team"`
	CreatedAt      time.Time  `db:"created_at"`
}

func newMatchRow(m bracket.Match) matchRow {
	row := matchRow{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		Round:        m.Round,
		MatchOrder:   m.Order,
		WinningTeam:  int(m.WinningTeam),
		CreatedAt:    m.CreatedAt,
	}
	if m.Team1 != nil {
		row.Team1Player1ID, row.Team1Player2ID = &m.Team1.Player1, &m.Team1.Player2
	}
	if m.Team2 != nil {
		row.Team2Player1ID, row.Team2Player2ID = &m.Team2.Player1, &m.Team2.Player2
	}
	return row
}

func (r matchRow) toMatch() bracket.Match {
	return bracket.Match{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		Round:        r.Round,
		Order:        r.MatchOrder,
		Team1:        teamFromColumns(r.Team1Player1ID, r.Team1Player2ID),
		Team2:        teamFromColumns(r.Team2Player1ID, r.Team2Player2ID),
		WinningTeam:  bracket.TeamSlot(r.WinningTeam),
		CreatedAt:    r.CreatedAt,
	}
}

func teamFromColumns(player1, player2 *uuid.UUID) *bracket.Team {
	if player1 == nil || player2 == nil {
		return nil
	}
	return &bracket.Team{Player1: *player1, Player2: *player2}
}

const matchColumns = `id, tournament_id, round, match_order, team1_player1_id, team1_player2_id,
	team2_player1_id, team2_player2_id, winning_team, created_at`

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	if tournament.CreatedAt.IsZero() {
		tournament.CreatedAt = time.Now().UTC()
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, owner_id, name, status, created_at)
        VALUES (:id, :owner_id, :name, :status, :created_at)`, tournament)
	return err
}

// UpdateTournamentStatusTx moves a tournament from one status to another. The
// row stays locked until tx ends, so a same-status transition doubles as a lock.
// A tournament that is no longer in the from status comes back as ErrStaleWrite.
func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to bracket.TournamentStatus) error {
	result, err := tx.ExecContext(ctx, tx.Rebind("UPDATE tournaments SET status = ? WHERE id = ? AND status = ?"), to, id, from)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStaleWrite)
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, s.db.Rebind("SELECT id, owner_id, name, status, created_at FROM tournaments WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	tournaments := []bracket.Tournament{}
	err := s.db.SelectContext(ctx, &tournaments, s.db.Rebind(`SELECT id, owner_id, name, status, created_at FROM tournaments
		WHERE owner_id = ? ORDER BY created_at DESC`), ownerID)
	return tournaments, err
}

func (s *TournamentStore) CreatePlayer(ctx context.Context, tx *sqlx.Tx, player *bracket.Player) error {
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now().UTC()
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO players (id, tournament_id, player_name, created_at)
		VALUES (:id, :tournament_id, :player_name, :created_at)`, player)
	return err
}

func (s *TournamentStore) GetPlayer(ctx context.Context, id uuid.UUID) (*bracket.Player, error) {
	var player bracket.Player
	err := s.db.GetContext(ctx, &player, s.db.Rebind("SELECT id, tournament_id, player_name, created_at FROM players WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayers returns the roster in signup order.
func (s *TournamentStore) GetPlayers(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Player, error) {
	return getPlayers(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetPlayersTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Player, error) {
	return getPlayers(ctx, tx, tournamentID)
}

func getPlayers(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) ([]bracket.Player, error) {
	players := []bracket.Player{}
	err := sqlx.SelectContext(ctx, q, &players, q.Rebind(`SELECT id, tournament_id, player_name, created_at FROM players
		WHERE tournament_id = ? ORDER BY created_at ASC, id ASC`), tournamentID)
	return players, err
}

func (s *TournamentStore) DeletePlayer(ctx context.Context, tx *sqlx.Tx, tournamentID, playerID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM players WHERE id = ? AND tournament_id = ?"), playerID, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, sql.ErrNoRows)
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]matchRow, len(matches))
	for i := range matches {
		if matches[i].CreatedAt.IsZero() {
			matches[i].CreatedAt = now
		}
		rows[i] = newMatchRow(matches[i])
	}

	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (`+matchColumns+`)
		VALUES (:id, :tournament_id, :round, :match_order, :team1_player1_id, :team1_player2_id,
		:team2_player1_id, :team2_player2_id, :winning_team, :created_at)`, rows)
	return err
}

func (s *TournamentStore) GetMatch(ctx context.Context, tournamentID, matchID uuid.UUID) (*bracket.Match, error) {
	var row matchRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT "+matchColumns+" FROM matches WHERE id = ? AND tournament_id = ?"), matchID, tournamentID)
	if err != nil {
		return nil, err
	}
	match := row.toMatch()
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, tournamentID)
}

// GetMatchesTx reads the bracket inside a transaction so that the rounds it
// creates are based on what the transaction sees.
func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, tx, tournamentID)
}

func getMatches(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var rows []matchRow
	query := q.Rebind("SELECT " + matchColumns + " FROM matches WHERE tournament_id = ? ORDER BY round ASC, match_order ASC")
	if err := sqlx.SelectContext(ctx, q, &rows, query, tournamentID); err != nil {
		return nil, err
	}

	matches := make([]bracket.Match, len(rows))
	for i, row := range rows {
		matches[i] = row.toMatch()
	}
	return matches, nil
}

func (s *TournamentStore) CountMatches(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	return countMatches(ctx, s.db, tournamentID)
}

func (s *TournamentStore) CountMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	return countMatches(ctx, tx, tournamentID)
}

func countMatches(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, q.Rebind("SELECT COUNT(*) FROM matches WHERE tournament_id = ?"), tournamentID)
	return count, err
}

// UpdateMatchWinner records a result only on an undecided match. Anything else
// comes back as ErrStaleWrite.
func (s *TournamentStore) UpdateMatchWinner(ctx context.Context, tx *sqlx.Tx, tournamentID, matchID uuid.UUID, winner bracket.TeamSlot) error {
	if !winner.Valid() {
		return fmt.Errorf("invalid winning team %d", winner)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE matches SET winning_team = ?
		WHERE id = ? AND tournament_id = ? AND winning_team = 0`), int(winner), matchID, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStaleWrite)
}

// DeleteMatches removes the whole bracket and reports how many matches were dropped.
func (s *TournamentStore) DeleteMatches(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int64, error) {
	result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournamentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
