package realtime

import (
	"log/slog"
	"sync"
)

const (
	CollectionTournaments = "tournaments"
	CollectionPlayers     = "players"
	CollectionMatches     = "matches"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event tells subscribers that a record changed. It carries no record data,
// receivers re-fetch what they need.
type Event struct {
	Collection   string `json:"collection"`
	Action       string `json:"action"`
	TournamentID string `json:"tournament_id"`
	RecordID     string `json:"record_id,omitempty"`
}

// Upstream bridges events between processes, for example over NATS.
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
}

func New() *PubSub {
	return &PubSub{
		subscribers: []chan Event{},
	}
}

// NewWithUpstream sends published events through the upstream, which delivers
// them back to every instance including this one.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := New()
	ps.upstream = upstream

	ch := upstream.Subscribe()
	go func() {
		for event := range ch {
			ps.publishLocal(event)
		}
		slog.Debug("pubsub: upstream channel closed")
	}()

	return ps
}

func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, 16)
	ps.subscribers = append(ps.subscribers, ch)
	slog.Debug("pubsub: subscriber added", "subscribers", len(ps.subscribers))
	return ch
}

func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

// publishLocal never blocks; a subscriber with a full buffer misses the event.
func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("pubsub: subscriber buffer full, dropping event",
				"collection", event.Collection, "tournament_id", event.TournamentID)
		}
	}
}
