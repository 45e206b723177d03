package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/db"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
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

type testEnv struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	tournaments *TournamentService
	players     *PlayerService
	matches     *MatchService
}

func newTestEnv(t *testing.T, events Publisher) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	tournamentStore := store.NewTournamentStore(database)
	return &testEnv{
		db:          database,
		store:       tournamentStore,
		tournaments: NewTournamentService(database, tournamentStore, events, rand.New(rand.NewPCG(1, 2))),
		players:     NewPlayerService(database, tournamentStore, events),
		matches:     NewMatchService(database, tournamentStore, events),
	}
}

// signup creates a tournament and registers n players named Player 1..n.
func (e *testEnv) signup(t *testing.T, ownerID uuid.UUID, n int) *bracket.Tournament {
	t.Helper()
	ctx := context.Background()

	tournament, err := e.tournaments.CreateTournament(ctx, ownerID, "Friday Doubles")
	require.NoError(t, err)

	for i := 1; i <= n; i++ {
		_, err := e.players.RegisterPlayer(ctx, tournament.ID, fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
	}
	return tournament
}

// start signs up n players and starts the tournament.
func (e *testEnv) start(t *testing.T, ownerID uuid.UUID, n int) (*bracket.Tournament, *StartResult) {
	t.Helper()

	tournament := e.signup(t, ownerID, n)
	result, err := e.tournaments.StartTournament(context.Background(), ownerID, tournament.ID)
	require.NoError(t, err)
	return tournament, result
}

func (e *testEnv) roundMatches(t *testing.T, tournamentID uuid.UUID, round int) []bracket.Match {
	t.Helper()

	matches, err := e.store.GetMatches(context.Background(), tournamentID)
	require.NoError(t, err)
	return bracket.NewState(matches).MatchesForRound(round)
}

func (e *testEnv) exec(t *testing.T, query string) {
	t.Helper()

	_, err := e.db.Exec(query)
	require.NoError(t, err)
}
