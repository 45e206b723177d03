package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	StatusSignup  TournamentStatus = "signup"
	StatusPlaying TournamentStatus = "playing"
)

type Tournament struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OwnerID   uuid.UUID        `db:"owner_id" json:"owner_id"`
	Name      string           `db:"name" json:"name"`
	Status    TournamentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

func (t *Tournament) IsOwnedBy(userID uuid.UUID) bool {
	return t.OwnerID == userID
}
