package app

import "sync"

// Hub fans values out to per-topic subscribers. Channels are buffered and a
// slow subscriber loses its oldest pending value rather than blocking Publish.
type Hub[T any] struct {
	mu     sync.Mutex
	buffer int
	topics map[string]map[chan T]struct{}
}

func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = 8
	}
	return &Hub[T]{
		buffer: buffer,
		topics: make(map[string]map[chan T]struct{}),
	}
}

// Subscribe registers a channel on topic. The caller must invoke cancel to avoid leaks.
func (h *Hub[T]) Subscribe(topic string) (<-chan T, func()) {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan T]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.topics[topic]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	return ch, cancel
}

// Publish delivers v to every subscriber of topic.
func (h *Hub[T]) Publish(topic string, v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Close closes every subscription on topic.
func (h *Hub[T]) Close(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.topics[topic] {
		close(ch)
	}
	delete(h.topics, topic)
}

// Subscribers reports how many channels listen on topic.
func (h *Hub[T]) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
