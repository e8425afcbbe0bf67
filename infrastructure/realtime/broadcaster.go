package realtime

import "sync"

// Broadcaster delivers every value to buffered subscribers. Unlike Hub it does not
// conflate: a subscriber whose buffer is full misses the value instead.
type Broadcaster[T any] struct {
	mu   sync.RWMutex
	subs map[chan T]struct{}
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[chan T]struct{})}
}

// Subscribe returns the receive side and a cancel func that closes it.
func (b *Broadcaster[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan T, buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, ch)
			close(ch)
		})
	}
}

// Broadcast never blocks.
func (b *Broadcaster[T]) Broadcast(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}
