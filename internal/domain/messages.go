package domain

import "time"

// Message is an ordered event attached to a connection. Immutable except
// for read marking: read_at is set once and never unset. Display and
// delivery order is (created_at, id) ascending.
type Message struct {
	ID            int64      `json:"id"`
	ConnectionID  string     `json:"connection_id"`
	SenderID      string     `json:"sender_id"`
	Body          string     `json:"body,omitempty"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
}

// PendingMessageCap is the maximum number of messages a connection may
// carry while it is still pending. Enforced atomically at insert time.
const PendingMessageCap = 5
