package service

import (
	"context"
	"strings"

	"campuslink/internal/domain"
)

type ConnectionsStore interface {
	RequestConnection(ctx context.Context, senderID, receiverID string) (domain.Connection, error)
	GetConnection(ctx context.Context, connectionID string) (domain.Connection, error)
	Respond(ctx context.Context, connectionID, responderID string, decision domain.ConnectionStatus) (domain.Connection, error)
	Remove(ctx context.Context, connectionID, requesterID string) error
	ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
}

type UsersStore interface {
	GetUserSummary(ctx context.Context, userID string) (domain.UserSummary, error)
}

// ConnectionNotifier pushes lifecycle events to live clients. Calls are
// best effort and run after the database write has committed; a failed
// push is never rolled back.
type ConnectionNotifier interface {
	ConnectionRequested(conn domain.Connection)
	ConnectionAccepted(conn domain.Connection)
}

type ConnectionService struct {
	Users       UsersStore
	Connections ConnectionsStore
	Notifier    ConnectionNotifier
}

func (s *ConnectionService) Request(ctx context.Context, senderID, receiverID string) (domain.Connection, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return domain.Connection{}, domain.NewValidationError(map[string]string{"receiver_id": "required"})
	}
	if receiverID == senderID {
		return domain.Connection{}, domain.ErrSelfConnection
	}

	if _, err := s.Users.GetUserSummary(ctx, receiverID); err != nil {
		return domain.Connection{}, err
	}

	conn, err := s.Connections.RequestConnection(ctx, senderID, receiverID)
	if err != nil {
		return domain.Connection{}, err
	}

	if s.Notifier != nil {
		s.Notifier.ConnectionRequested(conn)
	}
	return conn, nil
}

func (s *ConnectionService) Respond(ctx context.Context, responderID, connectionID, response string) (domain.Connection, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return domain.Connection{}, domain.NewValidationError(map[string]string{"connection_id": "required"})
	}

	var decision domain.ConnectionStatus
	switch response {
	case string(domain.ConnectionAccepted):
		decision = domain.ConnectionAccepted
	case string(domain.ConnectionRejected):
		decision = domain.ConnectionRejected
	default:
		return domain.Connection{}, domain.NewValidationError(map[string]string{"response": "must be accepted or rejected"})
	}

	conn, err := s.Connections.Respond(ctx, connectionID, responderID, decision)
	if err != nil {
		return domain.Connection{}, err
	}

	// Accept notifies the original requester. Reject stays silent.
	if decision == domain.ConnectionAccepted && s.Notifier != nil {
		s.Notifier.ConnectionAccepted(conn)
	}
	return conn, nil
}

func (s *ConnectionService) Remove(ctx context.Context, requesterID, connectionID string) error {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return domain.NewValidationError(map[string]string{"connection_id": "required"})
	}
	return s.Connections.Remove(ctx, connectionID, requesterID)
}

func (s *ConnectionService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	return s.Connections.ListConversations(ctx, userID)
}
