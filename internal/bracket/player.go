package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"player_name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
