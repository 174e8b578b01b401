package broadcast

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is one lifecycle notification pushed to every connected observer.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub fans events out to all registered observers, unfiltered. There is no
// replay for observers that connect later and no delivery acknowledgment.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Register adds an observer. The caller must invoke the returned cancel
// function to avoid leaks; the channel is closed by cancel.
func (h *Hub) Register() (<-chan []byte, func()) {
	ch := make(chan []byte, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount returns the number of registered observers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Emit pushes the event to every current observer.
func (h *Hub) Emit(event string, payload any) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		log.Printf("broadcast: marshal %s event: %v", event, err)
		return
	}
	h.emitRaw(data)
}

func (h *Hub) emitRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- data:
		default:
			// drop the oldest queued frame so a slow observer never blocks the hub
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
			}
		}
	}
}
