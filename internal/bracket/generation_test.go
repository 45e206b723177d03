package bracket

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: uuid.New(), Name: fmt.Sprintf("Player %d", i+1)}
	}
	return players
}

func makeTeams(n int) []Team {
	teams := make([]Team, n)
	for i := range teams {
		teams[i] = Team{Player1: uuid.New(), Player2: uuid.New()}
	}
	return teams
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestFormTeams(t *testing.T) {
	for n := 0; n <= 9; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			players := makePlayers(n)

			formation := FormTeams(players, seeded(42))

			assert.Len(t, formation.Teams, n/2)
			assert.Len(t, formation.Unused, n%2)

			seen := make(map[uuid.UUID]int)
			for _, team := range formation.Teams {
				assert.NotEqual(t, team.Player1, team.Player2, "a team needs two distinct players")
				seen[team.Player1]++
				seen[team.Player2]++
			}
			for _, p := range formation.Unused {
				seen[p.ID]++
			}
			assert.Len(t, seen, n, "every player should be accounted for")
			for id, count := range seen {
				assert.Equal(t, 1, count, "player %s used more than once", id)
			}
		})
	}
}

func TestFormTeams_DoesNotMutateInput(t *testing.T) {
	players := makePlayers(8)
	original := make([]Player, len(players))
	copy(original, players)

	FormTeams(players, seeded(7))

	assert.Equal(t, original, players)
}

func TestFormTeams_SeedIsReproducible(t *testing.T) {
	players := makePlayers(10)

	first := FormTeams(players, seeded(99))
	second := FormTeams(players, seeded(99))

	assert.Equal(t, first, second)
}

func TestFormTeams_NilShufflerKeepsOrder(t *testing.T) {
	players := makePlayers(5)

	formation := FormTeams(players, nil)

	require.Len(t, formation.Teams, 2)
	assert.Equal(t, Team{Player1: players[0].ID, Player2: players[1].ID}, formation.Teams[0])
	assert.Equal(t, Team{Player1: players[2].ID, Player2: players[3].ID}, formation.Teams[1])
	require.Len(t, formation.Unused, 1)
	assert.Equal(t, players[4].ID, formation.Unused[0].ID)
}

func TestBracketSize(t *testing.T) {
	testCases := []struct {
		count    int
		expected int
	}{
		{count: 0, expected: 0},
		{count: 1, expected: 1},
		{count: 2, expected: 2},
		{count: 3, expected: 4},
		{count: 4, expected: 4},
		{count: 5, expected: 8},
		{count: 8, expected: 8},
		{count: 9, expected: 16},
		{count: 33, expected: 64},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d teams", tc.count), func(t *testing.T) {
			assert.Equal(t, tc.expected, BracketSize(tc.count))
		})
	}
}

func TestFirstRound(t *testing.T) {
	tournamentID := uuid.New()

	for m := 2; m <= 17; m++ {
		t.Run(fmt.Sprintf("%d teams", m), func(t *testing.T) {
			teams := makeTeams(m)
			size := BracketSize(m)

			matches := FirstRound(tournamentID, teams)

			assert.Len(t, matches, size/2)

			byes := 0
			seen := make(map[Team]int)
			for i, match := range matches {
				assert.Equal(t, tournamentID, match.TournamentID)
				assert.Equal(t, 1, match.Round)
				assert.Equal(t, i+1, match.Order)
				require.NotNil(t, match.Team1)
				seen[*match.Team1]++

				if match.IsBye() {
					byes++
					assert.Equal(t, Team1, match.WinningTeam, "byes are decided at creation")
					assert.Equal(t, byes, i+1, "byes come before regular matches")
					continue
				}
				require.NotNil(t, match.Team2)
				seen[*match.Team2]++
				assert.Equal(t, NoTeam, match.WinningTeam)
			}

			assert.Equal(t, size-m, byes)
			assert.Len(t, seen, m)
			for _, count := range seen {
				assert.Equal(t, 1, count)
			}
		})
	}
}

func TestFirstRound_Boundaries(t *testing.T) {
	tournamentID := uuid.New()

	t.Run("no teams", func(t *testing.T) {
		assert.Empty(t, FirstRound(tournamentID, nil))
	})

	t.Run("one team has nobody to play", func(t *testing.T) {
		assert.Empty(t, FirstRound(tournamentID, makeTeams(1)))
	})

	t.Run("two teams play a single match", func(t *testing.T) {
		teams := makeTeams(2)
		matches := FirstRound(tournamentID, teams)

		require.Len(t, matches, 1)
		assert.False(t, matches[0].IsBye())
		assert.Equal(t, teams[0], *matches[0].Team1)
		assert.Equal(t, teams[1], *matches[0].Team2)
	})

	t.Run("three teams give one bye", func(t *testing.T) {
		teams := makeTeams(3)
		matches := FirstRound(tournamentID, teams)

		require.Len(t, matches, 2)
		assert.True(t, matches[0].IsBye())
		assert.Equal(t, teams[0], *matches[0].Team1)
		assert.False(t, matches[1].IsBye())
		assert.Equal(t, teams[1], *matches[1].Team1)
		assert.Equal(t, teams[2], *matches[1].Team2)
	})
}

func TestFirstRound_CopiesTeams(t *testing.T) {
	teams := makeTeams(2)
	matches := FirstRound(uuid.New(), teams)
	original := teams[0]

	teams[0] = Team{}

	assert.Equal(t, original, *matches[0].Team1)
}
