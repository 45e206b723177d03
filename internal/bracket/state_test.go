package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Empty(t *testing.T) {
	state := NewState(nil)

	assert.Equal(t, 1, state.MaxRound())
	assert.Empty(t, state.MatchesForRound(1))
	assert.Empty(t, state.Rounds())
	assert.False(t, state.RoundComplete(1))
	_, ok := state.Champion()
	assert.False(t, ok)
	assert.Equal(t, "Round 1", state.RoundLabel(1))
}

func TestState_SortsMatches(t *testing.T) {
	tournamentID := uuid.New()
	round1 := FirstRound(tournamentID, makeTeams(4))
	decide(round1, 1, Team1)
	decide(round1, 2, Team1)
	round2, err := NextRound(tournamentID, 1, round1)
	require.NoError(t, err)

	state := NewState([]Match{round2[0], round1[1], round1[0]})

	assert.Equal(t, []int{1, 2}, state.Rounds())
	assert.Equal(t, 2, state.MaxRound())
	require.Len(t, state.MatchesForRound(1), 2)
	assert.Equal(t, 1, state.MatchesForRound(1)[0].Order)
	assert.Equal(t, 2, state.MatchesForRound(1)[1].Order)
	assert.Equal(t, []Match{round1[0], round1[1], round2[0]}, state.Matches())

	found, ok := state.Match(round1[1].ID)
	require.True(t, ok)
	assert.Equal(t, round1[1], found)
	_, ok = state.Match(uuid.New())
	assert.False(t, ok)
}

func TestState_RoundLabel(t *testing.T) {
	tournamentID := uuid.New()
	round1 := FirstRound(tournamentID, makeTeams(8))
	for i := range round1 {
		round1[i].WinningTeam = Team1
	}
	round2, err := NextRound(tournamentID, 1, round1)
	require.NoError(t, err)
	for i := range round2 {
		round2[i].WinningTeam = Team2
	}
	round3, err := NextRound(tournamentID, 2, round2)
	require.NoError(t, err)

	t.Run("before the final exists", func(t *testing.T) {
		state := NewState(append(append([]Match{}, round1...), round2...))
		assert.Equal(t, "Round 1", state.RoundLabel(1))
		assert.Equal(t, "Round 2", state.RoundLabel(2))
	})

	t.Run("full bracket", func(t *testing.T) {
		all := append(append(append([]Match{}, round1...), round2...), round3...)
		state := NewState(all)
		assert.Equal(t, "Round 1", state.RoundLabel(1))
		assert.Equal(t, "Semi-Finals", state.RoundLabel(2))
		assert.Equal(t, "Finals", state.RoundLabel(3))
	})
}

func TestState_Champion(t *testing.T) {
	tournamentID := uuid.New()
	teams := makeTeams(2)
	final := FirstRound(tournamentID, teams)

	state := NewState(final)
	_, ok := state.Champion()
	assert.False(t, ok, "no champion before the final is decided")

	decide(final, 1, Team2)
	state = NewState(final)
	champion, ok := state.Champion()
	require.True(t, ok)
	assert.Equal(t, teams[1], champion)

	again, ok := NewState(final).Champion()
	require.True(t, ok)
	assert.Equal(t, champion, again)
}

func TestState_NoChampionWhileRoundsRemain(t *testing.T) {
	round1 := FirstRound(uuid.New(), makeTeams(4))
	for i := range round1 {
		round1[i].WinningTeam = Team1
	}

	_, ok := NewState(round1).Champion()
	assert.False(t, ok)
}

func TestScenario_FivePlayers(t *testing.T) {
	tournamentID := uuid.New()
	players := makePlayers(5)

	formation := FormTeams(players, seeded(5))
	require.Len(t, formation.Teams, 2)
	require.Len(t, formation.Unused, 1)

	matches := FirstRound(tournamentID, formation.Teams)
	require.Len(t, matches, 1)
	assert.False(t, matches[0].IsBye())

	state := NewState(matches)
	assert.Equal(t, "Finals", state.RoundLabel(1))

	decide(matches, 1, Team1)
	champion, ok := NewState(matches).Champion()
	require.True(t, ok)
	assert.Equal(t, formation.Teams[0], champion)
}

func TestScenario_FourTeams(t *testing.T) {
	tournamentID := uuid.New()
	teams := makeTeams(4)

	round1 := FirstRound(tournamentID, teams)
	require.Len(t, round1, 2)
	for _, m := range round1 {
		assert.False(t, m.IsBye())
	}

	decide(round1, 1, Team2)
	_, err := NextRound(tournamentID, 1, round1)
	require.ErrorIs(t, err, ErrRoundIncomplete)

	decide(round1, 2, Team1)
	round2, err := NextRound(tournamentID, 1, round1)
	require.NoError(t, err)
	require.Len(t, round2, 1)
	assert.Equal(t, teams[1], *round2[0].Team1)
	assert.Equal(t, teams[2], *round2[0].Team2)

	decide(round2, 1, Team1)
	champion, ok := NewState(append(round1, round2...)).Champion()
	require.True(t, ok)
	assert.Equal(t, teams[1], champion)
}

func TestScenario_ThreeTeams(t *testing.T) {
	tournamentID := uuid.New()
	teams := makeTeams(3)

	round1 := FirstRound(tournamentID, teams)
	require.Len(t, round1, 2)
	require.True(t, round1[0].IsBye())
	assert.True(t, round1[0].Decided())
	assert.False(t, NewState(round1).RoundComplete(1))

	decide(round1, 2, Team2)
	require.True(t, NewState(round1).RoundComplete(1))

	round2, err := NextRound(tournamentID, 1, round1)
	require.NoError(t, err)
	require.Len(t, round2, 1)
	assert.Equal(t, teams[0], *round2[0].Team1)
	assert.Equal(t, teams[2], *round2[0].Team2)
}

func TestRoster_TeamName(t *testing.T) {
	players := makePlayers(2)
	roster := NewRoster(players)

	assert.Equal(t, "Player 1 & Player 2", roster.TeamName(Team{Player1: players[0].ID, Player2: players[1].ID}))
	assert.Equal(t, "Player 1 & Unknown player", roster.TeamName(Team{Player1: players[0].ID, Player2: uuid.New()}))
}
