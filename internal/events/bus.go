package events

import (
	"sync"
	"sync/atomic"

	"github.com/v0xg/streamchapters/internal/logging"
)

// DefaultBuffer is the subscription buffer used when none is given
const DefaultBuffer = 256

// Bus fans events out to subscribers. Publishing never blocks: an absent
// or slow observer loses events and reconnects through persisted state.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *logging.Logger
}

// Subscription receives events in publish order on C
type Subscription struct {
	C <-chan Event

	ch      chan Event
	bus     *Bus
	once    sync.Once
	dropped atomic.Int64
}

func NewBus(logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.Default()
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.WithComponent("event_bus"),
	}
}

// Subscribe registers a new observer
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch, bus: b}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers e to every subscriber that has room for it
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.subs) == 0 {
		b.logger.Debug("No subscribers, dropping event", "type", e.Type)
		return
	}
	for sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			n := sub.dropped.Add(1)
			b.logger.Debug("Subscriber buffer full, dropping event", "type", e.Type, "dropped", n)
		}
	}
}

// Subscribers returns the number of attached observers
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many events this subscriber missed
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Close detaches the subscription and closes C
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}
