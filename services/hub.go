package services

import (
	"sync"
)

// DefaultSubscriberBuffer is the per-subscriber queue depth. A full
// queue means the subscriber is not draining; new messages for it are
// dropped (drop-new). Every message is a full snapshot, so a dropped
// one is made obsolete by the next delivery anyway.
const DefaultSubscriberBuffer = 8

// Hub is the per-user topic registry for live dashboard subscribers.
// Broadcast never blocks: a slow or dead subscriber cannot stall the
// committing request path or other subscribers.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan []byte]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[chan []byte]struct{}),
		buffer: DefaultSubscriberBuffer,
	}
}

// Subscribe registers a new delivery channel under the user's topic.
// The channel is closed by Unsubscribe.
func (h *Hub) Subscribe(userID string) chan []byte {
	ch := make(chan []byte, h.buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[userID]
	if !ok {
		subs = make(map[chan []byte]struct{})
		h.topics[userID] = subs
	}
	subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a delivery channel. Safe to call for
// a channel that was already removed.
func (h *Hub) Unsubscribe(userID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[userID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.topics, userID)
	}
	close(ch)
}

// Broadcast delivers msg to every subscriber of the user's topic. With
// no subscribers it is a no-op; messages are never queued for later
// connections. Called synchronously on the committing path, so
// delivery order per topic matches commit order.
func (h *Hub) Broadcast(userID string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.topics[userID] {
		select {
		case ch <- msg:
		default:
			// subscriber queue full, drop for this subscriber only
		}
	}
}

// Subscribers reports the live subscriber count for a user's topic.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[userID])
}
