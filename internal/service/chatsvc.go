package service

import (
	"context"
	"strings"
	"time"

	"campuslink/internal/domain"
)

type MessagesStore interface {
	Append(ctx context.Context, connectionID, senderID, body, attachmentURL string) (domain.Message, error)
	ListMessages(ctx context.Context, connectionID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, connectionID, readerID string, when time.Time) (int64, error)
	UnreadConversations(ctx context.Context, userID string) (int, error)
}

type MessageNotifier interface {
	MessageCreated(msg domain.Message)
}

type ChatService struct {
	Connections ConnectionsStore
	Messages    MessagesStore
	Notifier    MessageNotifier
	Now         func() time.Time
}

// Send appends a message to a connection. Participant, lifecycle and
// pending-cap checks happen atomically in the store; on success the
// message is pushed to the connection room.
func (s *ChatService) Send(ctx context.Context, senderID, connectionID, body, attachmentURL string) (domain.Message, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return domain.Message{}, domain.NewValidationError(map[string]string{"connection_id": "required"})
	}
	body = strings.TrimSpace(body)
	attachmentURL = strings.TrimSpace(attachmentURL)
	if body == "" && attachmentURL == "" {
		return domain.Message{}, domain.NewValidationError(map[string]string{"body": "required without attachment"})
	}

	msg, err := s.Messages.Append(ctx, connectionID, senderID, body, attachmentURL)
	if err != nil {
		return domain.Message{}, err
	}

	if s.Notifier != nil {
		s.Notifier.MessageCreated(msg)
	}
	return msg, nil
}

// History returns the thread in delivery order and, as a side effect,
// marks every message from the other participant as read: fetching the
// thread is the signal that the reader has seen it.
func (s *ChatService) History(ctx context.Context, requesterID, connectionID string) (domain.Connection, []domain.Message, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return domain.Connection{}, nil, domain.NewValidationError(map[string]string{"connection_id": "required"})
	}

	conn, err := s.Connections.GetConnection(ctx, connectionID)
	if err != nil {
		return domain.Connection{}, nil, err
	}
	if !conn.IsParticipant(requesterID) {
		return domain.Connection{}, nil, domain.ErrNotAuthorized
	}

	messages, err := s.Messages.ListMessages(ctx, connectionID)
	if err != nil {
		return domain.Connection{}, nil, err
	}

	if s.Now == nil {
		s.Now = time.Now
	}
	if _, err := s.Messages.MarkRead(ctx, connectionID, requesterID, s.Now().UTC()); err != nil {
		return domain.Connection{}, nil, err
	}

	return conn, messages, nil
}

// UnreadBadge is the number of conversations holding unread messages,
// recomputed from message state on every call.
func (s *ChatService) UnreadBadge(ctx context.Context, userID string) (int, error) {
	return s.Messages.UnreadConversations(ctx, userID)
}
