package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuslink/internal/domain"
)

type stubMessagesStore struct {
	t *testing.T

	appendFunc   func(context.Context, string, string, string, string) (domain.Message, error)
	listFunc     func(context.Context, string) ([]domain.Message, error)
	markReadFunc func(context.Context, string, string, time.Time) (int64, error)
	unreadFunc   func(context.Context, string) (int, error)
}

func (s *stubMessagesStore) Append(ctx context.Context, connectionID, senderID, body, attachmentURL string) (domain.Message, error) {
	if s.appendFunc != nil {
		return s.appendFunc(ctx, connectionID, senderID, body, attachmentURL)
	}
	s.t.Fatalf("Append called unexpectedly")
	return domain.Message{}, context.Canceled
}

func (s *stubMessagesStore) ListMessages(ctx context.Context, connectionID string) ([]domain.Message, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, connectionID)
	}
	s.t.Fatalf("ListMessages called unexpectedly")
	return nil, context.Canceled
}

func (s *stubMessagesStore) MarkRead(ctx context.Context, connectionID, readerID string, when time.Time) (int64, error) {
	if s.markReadFunc != nil {
		return s.markReadFunc(ctx, connectionID, readerID, when)
	}
	s.t.Fatalf("MarkRead called unexpectedly")
	return 0, context.Canceled
}

func (s *stubMessagesStore) UnreadConversations(ctx context.Context, userID string) (int, error) {
	if s.unreadFunc != nil {
		return s.unreadFunc(ctx, userID)
	}
	s.t.Fatalf("UnreadConversations called unexpectedly")
	return 0, context.Canceled
}

func TestSendRequiresBodyOrAttachment(t *testing.T) {
	svc := &ChatService{Messages: &stubMessagesStore{t: t}}

	_, err := svc.Send(context.Background(), "user-1", "conn-1", "   ", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendNotifiesConnectionRoom(t *testing.T) {
	msg := domain.Message{ID: 7, ConnectionID: "conn-1", SenderID: "user-1", Body: "hi"}
	store := &stubMessagesStore{
		t: t,
		appendFunc: func(_ context.Context, connectionID, senderID, body, attachmentURL string) (domain.Message, error) {
			if connectionID != "conn-1" || senderID != "user-1" || body != "hi" || attachmentURL != "" {
				t.Fatalf("unexpected append args: %s %s %q %q", connectionID, senderID, body, attachmentURL)
			}
			return msg, nil
		},
	}
	notifier := &recordingNotifier{}
	svc := &ChatService{Messages: store, Notifier: notifier}

	got, err := svc.Send(context.Background(), "user-1", "conn-1", "hi", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected message: %+v", got)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].ID != 7 {
		t.Fatalf("expected one message notification, got %+v", notifier.messages)
	}
}

func TestSendAllowsAttachmentOnly(t *testing.T) {
	store := &stubMessagesStore{
		t: t,
		appendFunc: func(_ context.Context, _, _, body, attachmentURL string) (domain.Message, error) {
			if body != "" || attachmentURL != "https://cdn.example.edu/f.png" {
				t.Fatalf("unexpected append args: %q %q", body, attachmentURL)
			}
			return domain.Message{ID: 1, AttachmentURL: attachmentURL}, nil
		},
	}
	svc := &ChatService{Messages: store}

	_, err := svc.Send(context.Background(), "user-1", "conn-1", "", "https://cdn.example.edu/f.png")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSendPassesThroughGateErrors(t *testing.T) {
	for _, want := range []error{domain.ErrMessageCapReached, domain.ErrConnectionNotActive, domain.ErrNotAuthorized} {
		store := &stubMessagesStore{
			t: t,
			appendFunc: func(context.Context, string, string, string, string) (domain.Message, error) {
				return domain.Message{}, want
			},
		}
		notifier := &recordingNotifier{}
		svc := &ChatService{Messages: store, Notifier: notifier}

		_, err := svc.Send(context.Background(), "user-1", "conn-1", "hi", "")
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if len(notifier.messages) != 0 {
			t.Fatal("no notification expected on failure")
		}
	}
}

func TestHistoryRejectsNonParticipant(t *testing.T) {
	conns := &stubConnectionsStore{
		t: t,
		getFunc: func(_ context.Context, connectionID string) (domain.Connection, error) {
			return domain.Connection{ID: connectionID, SenderID: "user-1", ReceiverID: "user-2"}, nil
		},
	}
	svc := &ChatService{Connections: conns, Messages: &stubMessagesStore{t: t}}

	_, _, err := svc.History(context.Background(), "user-3", "conn-1")
	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestHistoryMarksThreadRead(t *testing.T) {
	now := time.Date(2025, 9, 12, 10, 30, 0, 0, time.UTC)
	thread := []domain.Message{
		{ID: 1, ConnectionID: "conn-1", SenderID: "user-2", Body: "hello"},
		{ID: 2, ConnectionID: "conn-1", SenderID: "user-1", Body: "hey"},
	}

	var marked struct {
		connectionID string
		readerID     string
		when         time.Time
	}
	conns := &stubConnectionsStore{
		t: t,
		getFunc: func(_ context.Context, connectionID string) (domain.Connection, error) {
			return domain.Connection{ID: connectionID, SenderID: "user-2", ReceiverID: "user-1", Status: domain.ConnectionAccepted}, nil
		},
	}
	msgs := &stubMessagesStore{
		t: t,
		listFunc: func(_ context.Context, connectionID string) ([]domain.Message, error) {
			return thread, nil
		},
		markReadFunc: func(_ context.Context, connectionID, readerID string, when time.Time) (int64, error) {
			marked.connectionID = connectionID
			marked.readerID = readerID
			marked.when = when
			return 1, nil
		},
	}
	svc := &ChatService{
		Connections: conns,
		Messages:    msgs,
		Now:         func() time.Time { return now },
	}

	conn, got, err := svc.History(context.Background(), "user-1", "conn-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if conn.ID != "conn-1" {
		t.Fatalf("unexpected connection: %+v", conn)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected thread: %+v", got)
	}
	if marked.connectionID != "conn-1" || marked.readerID != "user-1" {
		t.Fatalf("unexpected mark-read args: %+v", marked)
	}
	if !marked.when.Equal(now) {
		t.Fatalf("unexpected mark-read time: %s", marked.when)
	}
}

func TestUnreadBadge(t *testing.T) {
	msgs := &stubMessagesStore{
		t: t,
		unreadFunc: func(_ context.Context, userID string) (int, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return 3, nil
		},
	}
	svc := &ChatService{Messages: msgs}

	n, err := svc.UnreadBadge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UnreadBadge: %v", err)
	}
	if n != 3 {
		t.Fatalf("unexpected badge count: %d", n)
	}
}
