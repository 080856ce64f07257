package realtime

import "campuslink/internal/domain"

const (
	EventConnectionRequestNew      = "connection:request:new"
	EventConnectionRequestAccepted = "connection:request:accepted"
	EventMessageNew                = "message:new"
)

// Broadcaster is the one registry capability fanout needs.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
}

// Fanout maps domain events to room broadcasts. Delivery is best effort:
// a participant who has not joined the room sees the data on the next
// poll or history fetch instead.
type Fanout struct {
	Registry Broadcaster
}

// ConnectionRequested tells the receiver about a new (or reactivated)
// pending request.
func (f *Fanout) ConnectionRequested(conn domain.Connection) {
	f.Registry.Broadcast(UserRoom(conn.ReceiverID), EventConnectionRequestNew, map[string]string{
		"connection_id": conn.ID,
		"sender_id":     conn.SenderID,
	})
}

// ConnectionAccepted tells the original requester their request went
// through. Reject emits nothing.
func (f *Fanout) ConnectionAccepted(conn domain.Connection) {
	f.Registry.Broadcast(UserRoom(conn.SenderID), EventConnectionRequestAccepted, map[string]string{
		"connection_id": conn.ID,
	})
}

// MessageCreated pushes a persisted message to the connection room; both
// participants receive it if they have joined.
func (f *Fanout) MessageCreated(msg domain.Message) {
	f.Registry.Broadcast(ConnectionRoom(msg.ConnectionID), EventMessageNew, msg)
}
