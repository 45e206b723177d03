package bracket

import (
	"time"

	"github.com/google/uuid"
)

// TeamSlot identifies one side of a match. It doubles as the recorded winner.
type TeamSlot int

const (
	NoTeam TeamSlot = 0
	Team1  TeamSlot = 1
	Team2  TeamSlot = 2
)

func (s TeamSlot) Valid() bool {
	return s == Team1 || s == Team2
}

type Match struct {
	ID           uuid.UUID `json:"id"`
	TournamentID uuid.UUID `json:"tournament_id"`

	// Position in the bracket, both 1-based
	Round int `json:"round"`
	Order int `json:"order"`

	Team1 *Team `json:"team1"`
	Team2 *Team `json:"team2"`

	WinningTeam TeamSlot  `json:"winning_team"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsBye reports whether the match has a single team with no opponent.
func (m Match) IsBye() bool {
	return m.Team1 != nil && m.Team2 == nil
}

func (m Match) Decided() bool {
	return m.WinningTeam.Valid()
}

func (m Match) TeamAt(slot TeamSlot) *Team {
	switch slot {
	case Team1:
		return m.Team1
	case Team2:
		return m.Team2
	default:
		return nil
	}
}

// Winner returns the team in the winning slot. The second value is false when
// the match is undecided or the winning slot is empty.
func (m Match) Winner() (Team, bool) {
	t := m.TeamAt(m.WinningTeam)
	if t == nil {
		return Team{}, false
	}
	return *t, true
}

// SamePairing compares the slots of two matches, ignoring ids and results.
func (m Match) SamePairing(other Match) bool {
	return m.Round == other.Round &&
		m.Order == other.Order &&
		sameTeam(m.Team1, other.Team1) &&
		sameTeam(m.Team2, other.Team2)
}

func sameTeam(a, b *Team) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
