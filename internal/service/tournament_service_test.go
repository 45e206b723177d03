package service

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/AdamBeresnev/doubles-bracket/internal/bracket"
	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/AdamBeresnev/doubles-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	ownerID := uuid.New()

	tournament, err := env.tournaments.CreateTournament(ctx, ownerID, "  Club Night  ")
	require.NoError(t, err)
	assert.Equal(t, "Club Night", tournament.Name)
	assert.Equal(t, bracket.StatusSignup, tournament.Status)
	assert.Equal(t, ownerID, tournament.OwnerID)

	_, err = env.tournaments.CreateTournament(ctx, ownerID, "   ")
	assert.ErrorIs(t, err, ErrTournamentNameRequired)
	assert.ErrorIs(t, err, ErrValidationFailed)

	mine, err := env.tournaments.GetTournamentsForUser(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tournament.ID, mine[0].ID)

	others, err := env.tournaments.GetTournamentsForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestGetTournament_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.tournaments.GetTournament(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.tournaments.GetTournamentData(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStartTournament_FivePlayers(t *testing.T) {
	env := newTestEnv(t, nil)
	ownerID := uuid.New()

	tournament, result := env.start(t, ownerID, 5)

	assert.Len(t, result.Teams, 2)
	require.Len(t, result.Unused, 1, "the odd player is reported")
	require.Len(t, result.Matches, 1)
	assert.False(t, result.Matches[0].IsBye())

	data, err := env.tournaments.GetTournamentData(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.StatusPlaying, data.Tournament.Status)
	assert.Len(t, data.Players, 5)
	assert.Len(t, data.State.Matches(), 1)
	assert.Equal(t, "Finals", data.State.RoundLabel(1))

	for _, team := range result.Teams {
		assert.False(t, team.Has(result.Unused[0].ID), "unused player must not be on a team")
	}
}

func TestStartTournament_ThreeTeams(t *testing.T) {
	env := newTestEnv(t, nil)

	_, result := env.start(t, uuid.New(), 6)

	require.Len(t, result.Matches, 2)
	assert.True(t, result.Matches[0].IsBye())
	assert.Equal(t, bracket.Team1, result.Matches[0].WinningTeam, "byes are decided when created")
	assert.False(t, result.Matches[1].IsBye())
	assert.Empty(t, result.Unused)
}

func TestStartTournament_Declined(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("not enough players", func(t *testing.T) {
		tournament := env.signup(t, ownerID, 3)
		_, err := env.tournaments.StartTournament(ctx, ownerID, tournament.ID)
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
		assert.ErrorIs(t, err, ErrDeclined)

		stored, err := env.tournaments.GetTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, bracket.StatusSignup, stored.Status)
	})

	t.Run("not the organizer", func(t *testing.T) {
		tournament := env.signup(t, ownerID, 4)
		_, err := env.tournaments.StartTournament(ctx, uuid.New(), tournament.ID)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("already started", func(t *testing.T) {
		tournament, _ := env.start(t, ownerID, 4)
		_, err := env.tournaments.StartTournament(ctx, ownerID, tournament.ID)
		assert.ErrorIs(t, err, ErrTournamentAlreadyStarted)

		count, err := env.store.CountMatches(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := env.tournaments.StartTournament(ctx, ownerID, uuid.New())
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}

func TestStartTournament_FailureLeavesSignupOpen(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	ownerID := uuid.New()
	tournament := env.signup(t, ownerID, 8)

	env.exec(t, `CREATE TRIGGER fail_matches BEFORE INSERT ON matches BEGIN SELECT RAISE(ABORT, 'boom'); END`)

	_, err := env.tournaments.StartTournament(ctx, ownerID, tournament.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)

	stored, err := env.tournaments.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.StatusSignup, stored.Status, "status change is rolled back with the matches")

	env.exec(t, `DROP TRIGGER fail_matches`)

	result, err := env.tournaments.StartTournament(ctx, ownerID, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, result.Matches, 2)
}

func TestStartTournament_SignupClosingWithStart(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	ownerID := uuid.New()
	tournament := env.signup(t, ownerID, 4)

	// The player lands in the same instant signup closes
	env.exec(t, `CREATE TRIGGER late_signup AFTER UPDATE OF status ON tournaments
		WHEN OLD.status = 'signup' AND NEW.status = 'playing'
		BEGIN
			INSERT INTO players (id, tournament_id, player_name)
			VALUES ('0b6f7c1e-5d4a-4c3b-9a2f-1e0d9c8b7a65', NEW.id, 'Latecomer');
		END`)

	result, err := env.tournaments.StartTournament(ctx, ownerID, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, result.Teams, 2)
	require.Len(t, result.Unused, 1)

	drawn := map[uuid.UUID]bool{}
	for _, team := range result.Teams {
		drawn[team.Player1] = true
		drawn[team.Player2] = true
	}
	for _, p := range result.Unused {
		drawn[p.ID] = true
	}

	players, err := env.store.GetPlayers(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, players, 5)
	for _, p := range players {
		assert.True(t, drawn[p.ID], "%s is neither in a team nor reported unused", p.Name)
	}
}

func TestStartTournament_SeedIsReproducible(t *testing.T) {
	teamNames := func() []string {
		database := setupTestDB(t)
		tournamentStore := store.NewTournamentStore(database)
		env := &testEnv{
			db:          database,
			store:       tournamentStore,
			tournaments: NewTournamentService(database, tournamentStore, nil, rand.New(rand.NewPCG(42, 42))),
			players:     NewPlayerService(database, tournamentStore, nil),
		}

		tournament, result := env.start(t, uuid.New(), 10)
		data, err := env.tournaments.GetTournamentData(context.Background(), tournament.ID)
		require.NoError(t, err)

		roster := bracket.NewRoster(data.Players)
		names := make([]string, len(result.Teams))
		for i, team := range result.Teams {
			names[i] = roster.TeamName(team)
		}
		return names
	}

	assert.Equal(t, teamNames(), teamNames())
}

func TestResetBracket(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("signup tournament has nothing to reset", func(t *testing.T) {
		tournament := env.signup(t, ownerID, 4)
		_, err := env.tournaments.ResetBracket(ctx, ownerID, tournament.ID)
		assert.ErrorIs(t, err, ErrTournamentNotPlaying)
	})

	tournament, _ := env.start(t, ownerID, 8)
	round1 := env.roundMatches(t, tournament.ID, 1)
	for _, m := range round1 {
		_, err := env.matches.SelectWinner(ctx, ownerID, tournament.ID, m.ID, bracket.Team1)
		require.NoError(t, err)
	}

	_, err := env.tournaments.ResetBracket(ctx, uuid.New(), tournament.ID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	deleted, err := env.tournaments.ResetBracket(ctx, ownerID, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = env.players.RegisterPlayer(ctx, tournament.ID, "Late Arrival")
	assert.ErrorIs(t, err, ErrRegistrationClosed, "signup stays closed after a reset")

	result, err := env.tournaments.StartTournament(ctx, ownerID, tournament.ID)
	require.NoError(t, err, "a reset bracket can be started again")
	assert.Len(t, result.Matches, 2)
}

func TestTournamentService_PublishesEvents(t *testing.T) {
	events := realtime.New()
	sub := events.Subscribe()
	env := newTestEnv(t, events)

	tournament, _ := env.start(t, uuid.New(), 4)

	var collections []string
	for len(sub) > 0 {
		event := <-sub
		assert.Equal(t, tournament.ID.String(), event.TournamentID)
		collections = append(collections, event.Collection)
	}
	assert.Equal(t, []string{
		realtime.CollectionTournaments,
		realtime.CollectionPlayers, realtime.CollectionPlayers,
		realtime.CollectionPlayers, realtime.CollectionPlayers,
		realtime.CollectionTournaments,
		realtime.CollectionMatches,
	}, collections)
}
