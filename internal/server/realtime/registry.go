// Package realtime authenticates long-lived push connections and fans
// notification events out to every live connection of a user.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Event is the wire shape of a push message.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// UnreadCountPayload is the body of the unread-count event.
type UnreadCountPayload struct {
	NotificationCount int `json:"notificationCount"`
}

// ChannelFor returns the logical channel name for a user. Every connection
// of that user joins the same channel.
func ChannelFor(userID string) string {
	return "user:" + userID
}

// connection is one live push connection. Events are queued on a buffered
// channel; the write pump drains it. A full queue drops the event rather
// than blocking the producer.
type connection struct {
	id     string
	userID string
	send   chan Event
}

// Registry owns the mapping from live connections to per-user channels.
// The binding is ephemeral: it exists only for the connection's lifetime
// and nothing is retained across reconnects.
type Registry struct {
	mu sync.RWMutex
	// conns maps connection id to its binding.
	conns map[string]*connection
	// channels maps channel name to the set of member connections.
	channels map[string]map[*connection]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]*connection),
		channels: make(map[string]map[*connection]struct{}),
	}
}

// Bind registers a new connection for userID and returns its binding.
func (r *Registry) Bind(userID string) *connection {
	c := &connection{
		id:     uuid.NewString(),
		userID: userID,
		send:   make(chan Event, 16),
	}

	channel := ChannelFor(userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.id] = c
	members, ok := r.channels[channel]
	if !ok {
		members = make(map[*connection]struct{})
		r.channels[channel] = members
	}
	members[c] = struct{}{}
	return c
}

// Unbind drops the connection's binding. Safe to call more than once.
func (r *Registry) Unbind(c *connection) {
	channel := ChannelFor(c.userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.id]; !ok {
		return
	}
	delete(r.conns, c.id)
	if members, ok := r.channels[channel]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(r.channels, channel)
		}
	}
	close(c.send)
}

// Publish delivers the event to every live connection on the user's
// channel. Delivery is best-effort: with no open connection the event is
// dropped, and a slow connection's full queue is skipped.
func (r *Registry) Publish(userID string, ev Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Sends happen under the read lock so Unbind cannot close a queue
	// mid-send. The sends are non-blocking, so the lock is held briefly.
	for c := range r.channels[ChannelFor(userID)] {
		select {
		case c.send <- ev:
		default:
		}
	}
}

// Connections reports how many connections are currently bound for userID.
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[ChannelFor(userID)])
}
