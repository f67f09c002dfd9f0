package hub

import (
	"sync"

	"roomdisplay/core/constants"
	"roomdisplay/core/logger"

	"github.com/google/uuid"
)

// Event is one named publication; payloads are full current objects, never
// diffs.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

const (
	EventRoomStatuses   = "roomStatuses"
	EventSyncCompleted  = "syncCompleted"
	EventWiFiUpdated    = "wifiUpdated"
	EventLogoUpdated    = "logoUpdated"
	EventSidebarUpdated = "sidebarUpdated"
	EventBookingUpdated = "bookingUpdated"
	EventColorsUpdated  = "colorsUpdated"
)

type Subscriber struct {
	ID   string
	send chan Event
}

// C is the subscriber's receive side. It is closed on unsubscribe.
func (s *Subscriber) C() <-chan Event {
	return s.send
}

// Hub fans published events out to every connected subscriber. Subscribers
// joining after a publish see only future publishes; current state comes
// from the snapshot endpoints instead.
type Hub struct {
	mux     sync.RWMutex
	subs    map[string]*Subscriber
	onFirst func()
}

func New() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

// OnFirstSubscribe installs a hook invoked on every subscription; the sync
// scheduler registers its idempotent start here so the first display
// connection kicks off polling.
func (h *Hub) OnFirstSubscribe(fn func()) {
	h.mux.Lock()
	h.onFirst = fn
	h.mux.Unlock()
}

func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:   uuid.NewString(),
		send: make(chan Event, constants.SubscriberBuffer),
	}

	h.mux.Lock()
	h.subs[sub.ID] = sub
	hook := h.onFirst
	h.mux.Unlock()

	logger.Info("Hub:Subscribe", "subscriber_id", sub.ID)
	if hook != nil {
		hook()
	}
	return sub
}

// Unsubscribe is silent: it does not affect other subscribers or the
// scheduler.
func (h *Hub) Unsubscribe(id string) {
	h.mux.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(sub.send)
	}
	h.mux.Unlock()
	if ok {
		logger.Info("Hub:Unsubscribe", "subscriber_id", id)
	}
}

// Publish delivers to all current subscribers without blocking the
// publisher. A subscriber whose buffer is full is dropped; its client will
// reconnect and pull a snapshot.
func (h *Hub) Publish(ev Event) {
	h.mux.Lock()
	var dropped []string
	for id, sub := range h.subs {
		select {
		case sub.send <- ev:
		default:
			delete(h.subs, id)
			close(sub.send)
			dropped = append(dropped, id)
		}
	}
	h.mux.Unlock()

	for _, id := range dropped {
		logger.Warn("Hub:Publish:SlowSubscriberDropped", "subscriber_id", id, "event", ev.Name)
	}
}

func (h *Hub) SubscriberCount() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.subs)
}
