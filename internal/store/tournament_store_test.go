package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Connect(db.DriverSQLite, "file::memory:", time.Second)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

func inTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, fn(tx))
	require.NoError(t, tx.Commit())
}

func createTestTournament(t *testing.T, database *sqlx.DB, store *TournamentStore, ownerID uuid.UUID) *bracket.Tournament {
	t.Helper()

	tournament := &bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "Friday Doubles",
		Status:  bracket.StatusSignup,
	}
	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateTournament(context.Background(), tx, tournament)
	})
	return tournament
}

func createTestPlayers(t *testing.T, database *sqlx.DB, store *TournamentStore, tournamentID uuid.UUID, names ...string) []bracket.Player {
	t.Helper()

	players := make([]bracket.Player, len(names))
	inTx(t, database, func(tx *sqlx.Tx) error {
		for i, name := range names {
			players[i] = bracket.Player{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				Name:         name,
				CreatedAt:    time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
			}
			if err := store.CreatePlayer(context.Background(), tx, &players[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return players
}

func TestCreateTournament(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	ownerID := uuid.New()

	tournament := createTestTournament(t, database, store, ownerID)

	fetched, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, ownerID, fetched.OwnerID)
	assert.Equal(t, "Friday Doubles", fetched.Name)
	assert.Equal(t, bracket.StatusSignup, fetched.Status)
	assert.WithinDuration(t, tournament.CreatedAt, fetched.CreatedAt, time.Second)

	_, err = store.GetTournament(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetTournamentsByOwner(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ownerID := uuid.New()

	first := createTestTournament(t, database, store, ownerID)
	time.Sleep(2 * time.Millisecond)
	second := createTestTournament(t, database, store, ownerID)
	createTestTournament(t, database, store, uuid.New())

	tournaments, err := store.GetTournamentsByOwner(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, tournaments, 2)
	assert.Equal(t, second.ID, tournaments[0].ID, "newest first")
	assert.Equal(t, first.ID, tournaments[1].ID)

	none, err := store.GetTournamentsByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateTournamentStatus(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())

	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.StatusSignup, bracket.StatusPlaying)
	})

	fetched, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.StatusPlaying, fetched.Status)

	tests := []struct {
		name string
		id   uuid.UUID
		from bracket.TournamentStatus
		err  error
	}{
		{name: "signup already closed", id: tournament.ID, from: bracket.StatusSignup, err: ErrStaleWrite},
		{name: "unknown tournament", id: uuid.New(), from: bracket.StatusSignup, err: ErrStaleWrite},
		{name: "same status holds the row", id: tournament.ID, from: bracket.StatusPlaying},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := database.BeginTxx(ctx, nil)
			require.NoError(t, err)
			defer tx.Rollback()

			err = store.UpdateTournamentStatusTx(ctx, tx, tt.id, tt.from, bracket.StatusPlaying)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPlayers(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())

	players := createTestPlayers(t, database, store, tournament.ID, "Ann", "Bob", "Cat")

	fetched, err := store.GetPlayers(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	for i := range players {
		assert.Equal(t, players[i].ID, fetched[i].ID, "signup order")
		assert.Equal(t, players[i].Name, fetched[i].Name)
		assert.Equal(t, tournament.ID, fetched[i].TournamentID)
	}

	one, err := store.GetPlayer(ctx, players[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", one.Name)

	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.DeletePlayer(ctx, tx, tournament.ID, players[1].ID)
	})
	_, err = store.GetPlayer(ctx, players[1].ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	err = store.DeletePlayer(ctx, tx, uuid.New(), players[0].ID)
	assert.ErrorIs(t, err, sql.ErrNoRows, "a player can only be removed from its own tournament")
}

func TestCreateMatches(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())
	players := createTestPlayers(t, database, store, tournament.ID, "A", "B", "C", "D", "E", "F")

	teams := []bracket.Team{
		{Player1: players[0].ID, Player2: players[1].ID},
		{Player1: players[2].ID, Player2: players[3].ID},
		{Player1: players[4].ID, Player2: players[5].ID},
	}
	matches := bracket.FirstRound(tournament.ID, teams)
	require.Len(t, matches, 2)

	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, matches)
	})

	fetched, err := store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	bye := fetched[0]
	assert.Equal(t, matches[0].ID, bye.ID)
	assert.True(t, bye.IsBye())
	assert.Equal(t, teams[0], *bye.Team1)
	assert.Nil(t, bye.Team2)
	assert.Equal(t, bracket.Team1, bye.WinningTeam)

	regular := fetched[1]
	assert.Equal(t, 1, regular.Round)
	assert.Equal(t, 2, regular.Order)
	assert.Equal(t, teams[1], *regular.Team1)
	assert.Equal(t, teams[2], *regular.Team2)
	assert.Equal(t, bracket.NoTeam, regular.WinningTeam)
	assert.WithinDuration(t, time.Now(), regular.CreatedAt, 5*time.Second)

	one, err := store.GetMatch(ctx, tournament.ID, regular.ID)
	require.NoError(t, err)
	assert.Equal(t, regular, *one)

	_, err = store.GetMatch(ctx, uuid.New(), regular.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	count, err := store.CountMatches(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCreateMatches_PositionIsUnique(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())

	teams := []bracket.Team{{Player1: uuid.New(), Player2: uuid.New()}, {Player1: uuid.New(), Player2: uuid.New()}}
	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, bracket.FirstRound(tournament.ID, teams))
	})

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	err = store.CreateMatches(ctx, tx, bracket.FirstRound(tournament.ID, teams))
	assert.Error(t, err, "round 1 order 1 already exists")
}

func TestUpdateMatchWinner(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())

	teams := []bracket.Team{{Player1: uuid.New(), Player2: uuid.New()}, {Player1: uuid.New(), Player2: uuid.New()}}
	matches := bracket.FirstRound(tournament.ID, teams)
	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.CreateMatches(ctx, tx, matches)
	})

	inTx(t, database, func(tx *sqlx.Tx) error {
		return store.UpdateMatchWinner(ctx, tx, tournament.ID, matches[0].ID, bracket.Team2)
	})

	fetched, err := store.GetMatch(ctx, tournament.ID, matches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.Team2, fetched.WinningTeam)

	testCases := []struct {
		name        string
		matchID     uuid.UUID
		winner      bracket.TeamSlot
		expectedErr error
	}{
		{name: "already decided", matchID: matches[0].ID, winner: bracket.Team1, expectedErr: ErrStaleWrite},
		{name: "unknown match", matchID: uuid.New(), winner: bracket.Team1, expectedErr: ErrStaleWrite},
		{name: "no winner", matchID: matches[0].ID, winner: bracket.NoTeam},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx, err := database.BeginTxx(ctx, nil)
			require.NoError(t, err)
			defer tx.Rollback()

			err = store.UpdateMatchWinner(ctx, tx, tournament.ID, tc.matchID, tc.winner)
			require.Error(t, err)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}

	fetched, err = store.GetMatch(ctx, tournament.ID, matches[0].ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.Team2, fetched.WinningTeam, "a recorded winner is never overwritten")
}

func TestDeleteMatches(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())
	other := createTestTournament(t, database, store, uuid.New())

	teams := []bracket.Team{{Player1: uuid.New(), Player2: uuid.New()}, {Player1: uuid.New(), Player2: uuid.New()}, {Player1: uuid.New(), Player2: uuid.New()}}
	inTx(t, database, func(tx *sqlx.Tx) error {
		if err := store.CreateMatches(ctx, tx, bracket.FirstRound(tournament.ID, teams)); err != nil {
			return err
		}
		return store.CreateMatches(ctx, tx, bracket.FirstRound(other.ID, teams))
	})

	var deleted int64
	inTx(t, database, func(tx *sqlx.Tx) error {
		var err error
		deleted, err = store.DeleteMatches(ctx, tx, tournament.ID)
		return err
	})
	assert.Equal(t, int64(2), deleted)

	remaining, err := store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	untouched, err := store.GetMatches(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, untouched, 2)
}

func TestGetMatchesTx_SeesUncommittedRows(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	tournament := createTestTournament(t, database, store, uuid.New())

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	teams := []bracket.Team{{Player1: uuid.New(), Player2: uuid.New()}, {Player1: uuid.New(), Player2: uuid.New()}}
	require.NoError(t, store.CreateMatches(ctx, tx, bracket.FirstRound(tournament.ID, teams)))

	matches, err := store.GetMatchesTx(ctx, tx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
