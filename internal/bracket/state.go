package bracket

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// State is a read-only view over every match of one tournament.
type State struct {
	matches []Match
	rounds  map[int][]Match
	numbers []int
}

func NewState(matches []Match) *State {
	s := &State{rounds: make(map[int][]Match)}

	for _, m := range matches {
		if _, exists := s.rounds[m.Round]; !exists {
			s.numbers = append(s.numbers, m.Round)
		}
		s.rounds[m.Round] = append(s.rounds[m.Round], m)
	}

	sort.Ints(s.numbers)
	for _, r := range s.numbers {
		s.rounds[r] = sortedByOrder(s.rounds[r])
		s.matches = append(s.matches, s.rounds[r]...)
	}

	return s
}

// Matches returns every match ordered by round, then by order within the round.
func (s *State) Matches() []Match {
	return s.matches
}

func (s *State) MatchesForRound(round int) []Match {
	return s.rounds[round]
}

// Rounds lists the round numbers present, ascending.
func (s *State) Rounds() []int {
	return s.numbers
}

// MaxRound is the highest round present, or 1 for an empty bracket.
func (s *State) MaxRound() int {
	if len(s.numbers) == 0 {
		return 1
	}
	return s.numbers[len(s.numbers)-1]
}

func (s *State) RoundComplete(round int) bool {
	return RoundComplete(s.rounds[round])
}

func (s *State) Match(id uuid.UUID) (Match, bool) {
	for _, m := range s.matches {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

// Champion is the winner of the final, which only exists once the highest
// round holds a single decided match.
func (s *State) Champion() (Team, bool) {
	final := s.rounds[s.MaxRound()]
	if len(final) != 1 {
		return Team{}, false
	}
	return final[0].Winner()
}

func (s *State) RoundLabel(round int) string {
	maxRound := s.MaxRound()
	switch {
	case round == maxRound && len(s.rounds[round]) == 1:
		return "Finals"
	case round == maxRound-1 && len(s.rounds[round]) == 2:
		return "Semi-Finals"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
