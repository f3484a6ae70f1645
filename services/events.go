// services/events.go - Progress event fan-out for websocket clients
package services

import "sync"

const (
	EventProgress = "progress"

	// Per-subscriber buffer; slow readers drop events rather than block writes
	eventBufferSize = 16
)

// ProgressEvent is pushed to a user's connected clients after an achievement
// is recorded, so dashboards can show XP and badge toasts without polling.
type ProgressEvent struct {
	Type          string   `json:"type"`
	AchievementID uint     `json:"achievement_id"`
	XP            int      `json:"xp"`
	Level         int      `json:"level"`
	LeveledUp     bool     `json:"leveled_up"`
	NewBadges     []string `json:"new_badges"`
}

// EventHub fans progress events out to per-user subscriber channels.
type EventHub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan ProgressEvent]bool
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[uint]map[chan ProgressEvent]bool),
	}
}

// Subscribe registers a listener for one user's events. The returned cancel
// function must be called when the client disconnects.
func (h *EventHub) Subscribe(userID uint) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, eventBufferSize)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan ProgressEvent]bool)
	}
	h.subs[userID][ch] = true
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the user. Never blocks;
// a subscriber with a full buffer misses the event.
func (h *EventHub) Publish(userID uint, event ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
