package httpapi

import (
	"sync"

	"koubei/internal/domain/testimonial"
)

const subscriberBuffer = 16

// Hub fans inserted rows out to realtime subscribers. Delivery is
// best-effort: a subscriber that cannot keep up loses rows instead of
// blocking the feed.
type Hub struct {
	mu   sync.Mutex
	subs map[*feedSubscriber]struct{}
}

type feedSubscriber struct {
	rows chan testimonial.Row
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*feedSubscriber]struct{})}
}

func (h *Hub) Subscribe() *feedSubscriber {
	sub := &feedSubscriber{rows: make(chan testimonial.Row, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

func (h *Hub) Unsubscribe(sub *feedSubscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.rows)
}

func (h *Hub) Publish(row testimonial.Row) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.rows <- row:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
