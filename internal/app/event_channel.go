package app

import (
	"sync"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// EventChannel carries events from the attempt worker to the presentation loop.
// Publish never blocks and buffering is unbounded; DrainAll never blocks.
// Events are delivered exactly once in publish order.
type EventChannel struct {
	mu    sync.Mutex
	queue []domain.Event
	ready chan struct{}
}

// NewEventChannel creates an empty channel
func NewEventChannel() *EventChannel {
	return &EventChannel{
		ready: make(chan struct{}, 1),
	}
}

// Publish appends an event
func (c *EventChannel) Publish(ev domain.Event) {
	c.mu.Lock()
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	// coalesced wake-up; a pending signal already covers this event
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// DrainAll removes and returns every pending event in publish order.
// Returns nil when nothing is pending.
func (c *EventChannel) DrainAll() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return nil
	}
	events := c.queue
	c.queue = nil
	return events
}

// Len returns the number of pending events
func (c *EventChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Ready is signalled after a Publish. Consumers that wait on it must still
// call DrainAll, which may return nil if another drain got there first.
func (c *EventChannel) Ready() <-chan struct{} {
	return c.ready
}
