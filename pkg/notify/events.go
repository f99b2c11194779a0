package notify

import (
	"sync"
	"time"
)

// EventType classifies a delivery lifecycle event.
type EventType string

const (
	EventSent      EventType = "sent"
	EventDelivered EventType = "delivered"
	EventFailed    EventType = "failed"
	EventExpired   EventType = "expired"
	EventEnqueued  EventType = "enqueued"
	EventExhausted EventType = "exhausted" // retry budget spent, terminal failure
)

// Event describes one delivery lifecycle transition.
type Event struct {
	Type       EventType `json:"type"`
	Request    Request   `json:"request"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Events is the delivery-event observer. Subscribers receive lifecycle
// events on a buffered channel; a full buffer drops events for that
// subscriber rather than blocking delivery.
type Events struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	bufferSize int
	closed     bool
}

// NewEvents creates an event observer with the given per-subscriber buffer.
// A minimum buffer of 1 is enforced so publishing never blocks.
func NewEvents(bufferSize int) *Events {
	return &Events{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscription is an active registration with the event observer.
// Close unsubscribes; it is idempotent.
type Subscription struct {
	ch     chan Event
	events *Events
	once   sync.Once
}

// C returns the channel events arrive on. The channel is closed when the
// subscription or the observer is closed.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unsubscribes and closes the event channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.events.remove(s)
		close(s.ch)
	})
}

// Subscribe registers a new subscriber and returns its handle.
// Subscribing to a closed observer returns an already-closed subscription.
func (e *Events) Subscribe() *Subscription {
	sub := &Subscription{
		ch:     make(chan Event, e.bufferSize),
		events: e,
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		sub.Close()
		return sub
	}
	e.subs[sub] = struct{}{}
	e.mu.Unlock()

	return sub
}

// Publish delivers the event to every subscriber without blocking.
func (e *Events) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return
	}

	for sub := range e.subs {
		select {
		case sub.ch <- ev:
		default:
			// Slow subscriber, drop the event for it.
		}
	}
}

// Close shuts down the observer and closes every subscription.
func (e *Events) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	subs := make([]*Subscription, 0, len(e.subs))
	for sub := range e.subs {
		subs = append(subs, sub)
	}
	clear(e.subs)
	e.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() {
			close(sub.ch)
		})
	}
}

func (e *Events) remove(sub *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subs, sub)
}
