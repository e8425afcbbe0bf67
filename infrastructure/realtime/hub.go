package realtime

import "sync"

// Hub holds the latest value of a feed and fans it out to subscribers.
// Each subscriber has a one-slot mailbox: a new value replaces an unread one,
// so slow readers skip intermediate values but always end on the latest.
type Hub[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	subs   map[*Subscription[T]]struct{}
}

// Subscription is a single reader of a Hub.
type Subscription[T any] struct {
	ch   chan T
	hub  *Hub[T]
	once sync.Once
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Subscribe registers a reader; the current value, if any, is delivered immediately.
func (h *Hub[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{ch: make(chan T, 1), hub: h}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.has {
		sub.ch <- h.latest
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish stores v as the latest value and offers it to every subscriber without blocking.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = v
	h.has = true
	for sub := range h.subs {
		// drop the unread value; only Publish sends, under h.mu, so the slot is free afterwards
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- v
	}
}

// Latest returns the current value and whether anything was published yet.
func (h *Hub[T]) Latest() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.has
}

func (h *Hub[T]) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// C is closed once the subscription is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close unsubscribes; safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs, s)
		close(s.ch)
	})
}
