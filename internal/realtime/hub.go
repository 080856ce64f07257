package realtime

import (
	"log/slog"
	"sync"
)

// Event is the envelope every socket frame carries.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Subscriber is one live socket from the hub's point of view. Deliver must
// not block; it reports false when the subscriber cannot take the event
// (full buffer), in which case the event is dropped for that subscriber.
type Subscriber interface {
	ID() string
	Deliver(ev Event) bool
}

// RoomRegistry is the room-membership contract the gateway and fanout
// depend on. Keeping it an interface means broadcast logic is testable
// without a network stack, and a pub/sub-backed registry could replace the
// in-process hub without touching callers.
type RoomRegistry interface {
	Join(sub Subscriber, room string)
	Leave(sub Subscriber, room string)
	LeaveAll(sub Subscriber)
	Broadcast(room, event string, payload any)
}

func UserRoom(userID string) string { return "user-" + userID }

func ConnectionRoom(connectionID string) string { return "connection-" + connectionID }

// Hub is the single-process room registry: room name -> subscriber set.
// Safe for concurrent join/leave while broadcasts are in flight.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[string]Subscriber),
	}
}

func (h *Hub) Join(sub Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]Subscriber)
		h.rooms[room] = members
	}
	members[sub.ID()] = sub
}

func (h *Hub) Leave(sub Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(sub.ID(), room)
}

// LeaveAll removes the subscriber from every room. Called on disconnect;
// a reconnecting client must re-join its rooms explicitly.
func (h *Hub) LeaveAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := sub.ID()
	for room := range h.rooms {
		h.leaveLocked(id, room)
	}
}

func (h *Hub) leaveLocked(subID, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, subID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers the event to every subscriber in the room. Sends are
// non-blocking: a subscriber whose buffer is full misses the event and
// reconciles on its next history fetch. A dead socket is removed by its own
// pump teardown, not here.
func (h *Hub) Broadcast(room, event string, payload any) {
	ev := Event{Event: event, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.rooms[room] {
		if !sub.Deliver(ev) {
			h.logger.Warn("realtime: dropped event for slow subscriber",
				"room", room, "event", event, "subscriber", sub.ID())
		}
	}
}
