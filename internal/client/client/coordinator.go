package client

import (
	"context"
	"sync"
)

// Coordinator serializes access-token refreshes across concurrent requests.
// The first caller that hits an expired token performs the refresh; every
// other caller parks in a FIFO queue and is handed the new token when the
// refresh lands.
//
// On a failed refresh the queue is deliberately left unserved: the flag is
// cleared so a later request can try again, but parked waiters stay parked
// until their context expires. Callers must always wait with a context.
type Coordinator struct {
	mu         sync.Mutex
	refreshing bool
	queue      []chan string
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// begin reports whether the caller is the one that should refresh. When
// false, the returned channel delivers the new access token once the
// in-flight refresh succeeds.
func (c *Coordinator) begin() (leader bool, wait <-chan string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		ch := make(chan string, 1)
		c.queue = append(c.queue, ch)
		return false, ch
	}

	c.refreshing = true
	return true, nil
}

// succeed hands the new token to every parked waiter in arrival order and
// resets the coordinator.
func (c *Coordinator) succeed(token string) {
	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, ch := range queue {
		ch <- token
	}
}

// fail clears the refreshing flag. Parked waiters are not notified.
func (c *Coordinator) fail() {
	c.mu.Lock()
	c.refreshing = false
	c.mu.Unlock()
}

// await blocks until the in-flight refresh delivers a token or ctx ends.
func await(ctx context.Context, wait <-chan string) (string, error) {
	select {
	case token := <-wait:
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
