package service

import (
	"math/rand/v2"
	"sync"

	"github.com/AdamBeresnev/doubles-bracket/internal/realtime"
	"github.com/google/uuid"
)

// Publisher receives a notification after every committed change.
type Publisher interface {
	Publish(event realtime.Event)
}

func publish(p Publisher, collection, action string, tournamentID, recordID uuid.UUID) {
	if p == nil {
		return
	}
	p.Publish(realtime.Event{
		Collection:   collection,
		Action:       action,
		TournamentID: tournamentID.String(),
		RecordID:     recordID.String(),
	})
}

// lockedShuffler lets concurrent requests share one seeded source.
type lockedShuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedShuffler) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}
