package services

import (
	"sync"

	"moves/models"
)

const subscriberBuffer = 16

// Hub fans new direct messages out to the recipient's live connections.
// Publishing never blocks: a subscriber whose buffer is full misses the
// message and can catch up through the conversation endpoint.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan models.Message]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[chan models.Message]struct{})}
}

// Subscribe registers a listener for messages addressed to userID. The
// returned cancel func unregisters it and closes the channel.
func (h *Hub) Subscribe(userID uint) (<-chan models.Message, func()) {
	ch := make(chan models.Message, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan models.Message]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers msg to every subscriber of its recipient and returns how
// many received it.
func (h *Hub) Publish(msg models.Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subs[msg.RecipientID] {
		select {
		case ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers reports how many live listeners a user has.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
