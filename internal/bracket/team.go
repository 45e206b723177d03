package bracket

import (
	"github.com/google/uuid"
)

const unknownPlayerName = "Unknown player"

// Team is a pairing of two players. It is never stored on its own, only as the
// player ids inside a match.
type Team struct {
	Player1 uuid.UUID `json:"player1"`
	Player2 uuid.UUID `json:"player2"`
}

func (t Team) Has(playerID uuid.UUID) bool {
	return t.Player1 == playerID || t.Player2 == playerID
}

// Roster resolves player ids to players for a single tournament.
type Roster map[uuid.UUID]Player

func NewRoster(players []Player) Roster {
	roster := make(Roster, len(players))
	for _, p := range players {
		roster[p.ID] = p
	}
	return roster
}

func (r Roster) PlayerName(id uuid.UUID) string {
	if p, ok := r[id]; ok {
		return p.Name
	}
	return unknownPlayerName
}

// TeamName renders a team as "Alice & Bob". Players removed after the bracket
// was built show up as unknown.
func (r Roster) TeamName(t Team) string {
	return r.PlayerName(t.Player1) + " & " + r.PlayerName(t.Player2)
}
