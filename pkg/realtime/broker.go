package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is one server-sent event addressed to a single user.
type Event struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	UserID uint            `json:"user_id"`
}

// Broker fans events out to every open stream of a user. Sends never block:
// a subscriber whose buffer is full misses the event.
type Broker struct {
	clients map[uint]map[chan Event]struct{}
	mu      sync.RWMutex
}

var DefaultBroker = NewBroker()

func NewBroker() *Broker {
	return &Broker{
		clients: make(map[uint]map[chan Event]struct{}),
	}
}

// Subscribe registers a new buffered channel for userID.
func (b *Broker) Subscribe(userID uint) chan Event {
	ch := make(chan Event, 16)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[userID]; !ok {
		b.clients[userID] = make(map[chan Event]struct{})
	}
	b.clients[userID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes ch.
func (b *Broker) Unsubscribe(userID uint, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userClients, ok := b.clients[userID]
	if !ok {
		return
	}
	if _, ok := userClients[ch]; !ok {
		return
	}
	delete(userClients, ch)
	close(ch)
	if len(userClients) == 0 {
		delete(b.clients, userID)
	}
}

// Publish marshals data once and delivers it to every stream of userID.
// It returns how many streams received the event.
func (b *Broker) Publish(userID uint, eventType string, data interface{}) int {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[SSE] could not marshal %s event: %v", eventType, err)
		return 0
	}
	event := Event{Type: eventType, Data: payload, UserID: userID}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for ch := range b.clients[userID] {
		select {
		case ch <- event:
			delivered++
		default:
			log.Printf("[SSE] stream buffer full for user %d, dropping %s", userID, eventType)
		}
	}
	return delivered
}

func (b *Broker) ClientCount(userID uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[userID])
}
