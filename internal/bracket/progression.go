package bracket

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrRoundIncomplete   = errors.New("round has undecided matches")
	ErrInconsistentRound = errors.New("round is inconsistent")
)

// RoundComplete reports whether every match has a recorded winner. An empty
// round is never complete.
func RoundComplete(matches []Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.Decided() {
			return false
		}
	}
	return true
}

// NextRound pairs the winners of a completed round, in match order, into the
// matches of round+1. The final round has no successor and yields nil.
func NextRound(tournamentID uuid.UUID, round int, matches []Match) ([]Match, error) {
	if !RoundComplete(matches) {
		return nil, fmt.Errorf("round %d: %w", round, ErrRoundIncomplete)
	}
	if len(matches) == 1 {
		return nil, nil
	}

	ordered := sortedByOrder(matches)
	winners := make([]Team, 0, len(ordered))
	for _, m := range ordered {
		if m.Round != round {
			return nil, fmt.Errorf("%w: match %s belongs to round %d, not %d", ErrInconsistentRound, m.ID, m.Round, round)
		}
		w, ok := m.Winner()
		if !ok {
			return nil, fmt.Errorf("%w: match %s has winner %d but no team in that slot", ErrInconsistentRound, m.ID, m.WinningTeam)
		}
		winners = append(winners, w)
	}

	if len(winners)%2 != 0 {
		return nil, fmt.Errorf("%w: round %d has %d winners, expected an even count", ErrInconsistentRound, round, len(winners))
	}

	next := make([]Match, 0, len(winners)/2)
	for i := 0; i < len(winners); i += 2 {
		team1, team2 := winners[i], winners[i+1]
		next = append(next, Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Round:        round + 1,
			Order:        len(next) + 1,
			Team1:        &team1,
			Team2:        &team2,
		})
	}

	return next, nil
}

func sortedByOrder(matches []Match) []Match {
	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})
	return ordered
}
