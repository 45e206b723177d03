package bracket

import (
	"math"

	"github.com/AdamBeresnev/doubles-bracket/internal/utils"
	"github.com/google/uuid"
)

// Shuffler is satisfied by *rand.Rand from math/rand/v2.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type Formation struct {
	Teams []Team
	// Players left without a partner, at most one
	Unused []Player
}

// FormTeams shuffles the players and pairs them up two at a time. The input
// slice is not modified. A nil shuffler keeps the given order.
func FormTeams(players []Player, shuffler Shuffler) Formation {
	shuffled := make([]Player, len(players))
	copy(shuffled, players)

	if shuffler != nil {
		shuffler.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}

	formation := Formation{Teams: make([]Team, 0, len(shuffled)/2)}
	for i := 0; i+1 < len(shuffled); i += 2 {
		formation.Teams = append(formation.Teams, Team{
			Player1: shuffled[i].ID,
			Player2: shuffled[i+1].ID,
		})
	}
	if len(shuffled)%2 == 1 {
		formation.Unused = append(formation.Unused, shuffled[len(shuffled)-1])
	}

	return formation
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func BracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// FirstRound builds the round 1 matches. The first teams get the byes, the rest
// are paired in order. Bye matches come out already decided for their team.
// A single team has nobody to play and yields no matches.
func FirstRound(tournamentID uuid.UUID, teams []Team) []Match {
	if len(teams) <= 1 {
		return nil
	}

	bracketSize := BracketSize(len(teams))
	byeCount := bracketSize - len(teams)
	matches := make([]Match, 0, bracketSize/2)

	newMatch := func(team1, team2 *Team) Match {
		return Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Round:        1,
			Order:        len(matches) + 1,
			Team1:        team1,
			Team2:        team2,
		}
	}

	for i := 0; i < byeCount; i++ {
		m := newMatch(utils.Ptr(teams[i]), nil)
		m.WinningTeam = Team1
		matches = append(matches, m)
	}

	for i := byeCount; i+1 < len(teams); i += 2 {
		matches = append(matches, newMatch(utils.Ptr(teams[i]), utils.Ptr(teams[i+1])))
	}

	return matches
}
