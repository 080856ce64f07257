package domain

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is a directed edge proposal between two users that becomes
// bidirectional once accepted. At most one row exists per unordered pair;
// a rejected edge may be reactivated by either party, which rewrites
// sender, receiver and created_at in place.
type Connection struct {
	ID         string           `json:"id"`
	SenderID   string           `json:"sender_id"`
	ReceiverID string           `json:"receiver_id"`
	Status     ConnectionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}

// OtherParticipant returns the participant that is not selfID.
// ErrNotAuthorized if selfID is not a participant at all.
func (c Connection) OtherParticipant(selfID string) (string, error) {
	switch selfID {
	case c.SenderID:
		return c.ReceiverID, nil
	case c.ReceiverID:
		return c.SenderID, nil
	default:
		return "", ErrNotAuthorized
	}
}

// IsParticipant reports whether userID is the sender or the receiver.
func (c Connection) IsParticipant(userID string) bool {
	return userID == c.SenderID || userID == c.ReceiverID
}

// ConversationSummary is one row of the conversations list: the connection,
// the other party, the latest message (if any) and the caller's unread count.
type ConversationSummary struct {
	ConnectionID  string           `json:"connection_id"`
	Status        ConnectionStatus `json:"status"`
	User          UserSummary      `json:"user"`
	LastMessage   string           `json:"last_message,omitempty"`
	LastMessageAt *time.Time       `json:"last_message_at,omitempty"`
	UnreadCount   int              `json:"unread_count"`
}
