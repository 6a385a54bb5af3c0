// internal/feed/feed.go
package feed

import (
	"sync"

	"github.com/pixelmural/mural-backend/internal/models"
)

const subscriberBuffer = 16

// Subscriber receives the full current cell record set on every change.
type Subscriber struct {
	C chan []models.CellRecord
}

// Broadcaster fans the persistent store's change notifications out to
// subscribers: the in-process reconciliation loop and any number of SSE
// clients. The payload is always the complete non-default record set, never
// a delta, so consumers can rebuild from scratch on every push.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[*Subscriber]struct{}),
	}
}

// Subscribe adds a subscriber and returns it.
func (b *Broadcaster) Subscribe() *Subscriber {
	s := &Subscriber{
		C: make(chan []models.CellRecord, subscriberBuffer),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.C)
	}
	b.mu.Unlock()
}

// Publish sends the record set to every subscriber.
func (b *Broadcaster) Publish(records []models.CellRecord) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		select {
		case s.C <- records:
		default:
			// Channel full, skip slow subscriber.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
