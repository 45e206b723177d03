package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSUpstream fans events out to every instance subscribed to the subject.
type NATSUpstream struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string

	mu          sync.RWMutex
	subscribers []chan Event
}

func NewNATSUpstream(url, subject string) (*NATSUpstream, error) {
	nc, err := nats.Connect(url,
		nats.Name("doubles-bracket"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats: disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats: reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	u := &NATSUpstream{nc: nc, subject: subject}

	sub, err := nc.Subscribe(subject, u.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	u.sub = sub

	return u, nil
}

func (u *NATSUpstream) handle(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Warn("nats: dropping malformed event", "subject", msg.Subject, "error", err)
		return
	}

	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, ch := range u.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (u *NATSUpstream) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("nats: failed to marshal event", "error", err)
		return
	}
	if err := u.nc.Publish(u.subject, data); err != nil {
		slog.Error("nats: failed to publish event", "subject", u.subject, "error", err)
	}
}

func (u *NATSUpstream) Subscribe() chan Event {
	ch := make(chan Event, 64)

	u.mu.Lock()
	u.subscribers = append(u.subscribers, ch)
	u.mu.Unlock()

	return ch
}

func (u *NATSUpstream) Unsubscribe(ch chan Event) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i, sub := range u.subscribers {
		if sub == ch {
			u.subscribers = append(u.subscribers[:i], u.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close drains the subscription and closes every subscriber channel.
func (u *NATSUpstream) Close() {
	if u.sub != nil {
		if err := u.sub.Unsubscribe(); err != nil {
			slog.Warn("nats: failed to unsubscribe", "error", err)
		}
	}
	u.nc.Close()

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, ch := range u.subscribers {
		close(ch)
	}
	u.subscribers = nil
}
