package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPubSub_PublishReachesEverySubscriber(t *testing.T) {
	ps := New()
	first := ps.Subscribe()
	second := ps.Subscribe()

	event := Event{Collection: CollectionMatches, Action: ActionUpdate, TournamentID: "t1", RecordID: "m1"}
	ps.Publish(event)

	assert.Equal(t, event, receive(t, first))
	assert.Equal(t, event, receive(t, second))
}

func TestPubSub_Unsubscribe(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()
	other := ps.Subscribe()

	ps.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")

	ps.Publish(Event{Collection: CollectionPlayers, TournamentID: "t1"})
	assert.Equal(t, "t1", receive(t, other).TournamentID)

	// Unsubscribing twice is harmless
	ps.Unsubscribe(ch)
}

func TestPubSub_FullSubscriberDoesNotBlock(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(ch)*2; i++ {
			ps.Publish(Event{TournamentID: "t1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, cap(ch))
}

type loopbackUpstream struct {
	mu        sync.Mutex
	published []Event
	ch        chan Event
}

func (u *loopbackUpstream) Publish(event Event) {
	u.mu.Lock()
	u.published = append(u.published, event)
	u.mu.Unlock()
	u.ch <- event
}

func (u *loopbackUpstream) Subscribe() chan Event { return u.ch }

func (u *loopbackUpstream) Unsubscribe(ch chan Event) { close(ch) }

func TestPubSub_WithUpstream(t *testing.T) {
	upstream := &loopbackUpstream{ch: make(chan Event, 4)}
	ps := NewWithUpstream(upstream)
	sub := ps.Subscribe()

	event := Event{Collection: CollectionTournaments, Action: ActionUpdate, TournamentID: "t9"}
	ps.Publish(event)

	assert.Equal(t, event, receive(t, sub))

	upstream.mu.Lock()
	defer upstream.mu.Unlock()
	require.Len(t, upstream.published, 1, "events go through the upstream")
}
