package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campuslink/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagesStore struct {
	pool *pgxpool.Pool
}

func NewMessagesStore(pool *pgxpool.Pool) *MessagesStore {
	return &MessagesStore{pool: pool}
}

// Append inserts a message after checking the parent connection inside one
// transaction. The connection row is locked FOR UPDATE so the pending-cap
// count and the insert cannot interleave with a concurrent sender: two
// callers observing count=4 would otherwise both insert and push a pending
// thread past the cap.
func (s *MessagesStore) Append(ctx context.Context, connectionID, senderID, body, attachmentURL string) (domain.Message, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Message{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const lockConn = `
		SELECT sender_id, receiver_id, status
		FROM connections
		WHERE id = $1
		FOR UPDATE
	`
	var (
		srcUUID pgtype.UUID
		dstUUID pgtype.UUID
		status  string
	)
	err = tx.QueryRow(ctx, lockConn, connectionID).Scan(&srcUUID, &dstUUID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("lock connection: %w", err)
	}

	if senderID != uuidOrEmpty(srcUUID) && senderID != uuidOrEmpty(dstUUID) {
		return domain.Message{}, domain.ErrNotAuthorized
	}

	switch domain.ConnectionStatus(status) {
	case domain.ConnectionRejected:
		return domain.Message{}, domain.ErrConnectionNotActive
	case domain.ConnectionPending:
		var count int
		const countQ = `SELECT COUNT(*) FROM messages WHERE connection_id = $1`
		if err := tx.QueryRow(ctx, countQ, connectionID).Scan(&count); err != nil {
			return domain.Message{}, fmt.Errorf("count pending messages: %w", err)
		}
		if count >= domain.PendingMessageCap {
			return domain.Message{}, domain.ErrMessageCapReached
		}
	}

	// created_at is stamped with clock_timestamp() here, after the row lock
	// above serialized us against concurrent senders. now() would be the
	// transaction start time and could predate a message already committed
	// by a sender that started later but locked first.
	const insert = `
		INSERT INTO messages (connection_id, sender_id, body, attachment_url, created_at)
		VALUES ($1, $2, $3, $4, clock_timestamp())
		RETURNING id, created_at
	`
	var (
		id        int64
		createdAt time.Time
	)
	if err := tx.QueryRow(ctx, insert, connectionID, senderID, nullIfEmpty(body), nullIfEmpty(attachmentURL)).Scan(&id, &createdAt); err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Message{}, fmt.Errorf("commit message: %w", err)
	}

	return domain.Message{
		ID:            id,
		ConnectionID:  connectionID,
		SenderID:      senderID,
		Body:          body,
		AttachmentURL: attachmentURL,
		CreatedAt:     createdAt,
	}, nil
}

// ListMessages returns the full thread in delivery order: created_at
// ascending with id as the tiebreak, matching insertion order.
func (s *MessagesStore) ListMessages(ctx context.Context, connectionID string) ([]domain.Message, error) {
	const q = `
		SELECT id, sender_id, body, attachment_url, created_at, read_at
		FROM messages
		WHERE connection_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, q, connectionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var (
			id         int64
			senderUUID pgtype.UUID
			body       pgtype.Text
			attachment pgtype.Text
			createdAt  time.Time
			readAt     pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &senderUUID, &body, &attachment, &createdAt, &readAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, domain.Message{
			ID:            id,
			ConnectionID:  connectionID,
			SenderID:      uuidOrEmpty(senderUUID),
			Body:          textOrEmpty(body),
			AttachmentURL: textOrEmpty(attachment),
			CreatedAt:     createdAt,
			ReadAt:        timestamptzPtr(readAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// MarkRead stamps every message the reader has not seen from the other
// participant. read_at is set once and never cleared, so re-invoking is a
// no-op.
func (s *MessagesStore) MarkRead(ctx context.Context, connectionID, readerID string, when time.Time) (int64, error) {
	const q = `
		UPDATE messages
		SET read_at = $3
		WHERE connection_id = $1
		  AND sender_id <> $2
		  AND read_at IS NULL
	`
	ct, err := s.pool.Exec(ctx, q, connectionID, readerID, when)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return ct.RowsAffected(), nil
}

// UnreadConversations counts distinct live connections holding at least one
// unread message for the user; this is the notification badge number. It is
// derived from message state on every call; there is no stored counter to
// drift.
func (s *MessagesStore) UnreadConversations(ctx context.Context, userID string) (int, error) {
	const q = `
		SELECT COUNT(DISTINCT m.connection_id)
		FROM messages m
		JOIN connections c ON c.id = m.connection_id
		WHERE (c.sender_id = $1 OR c.receiver_id = $1)
		  AND c.status IN ('pending', 'accepted')
		  AND m.sender_id <> $1
		  AND m.read_at IS NULL
	`
	var count int
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread conversations: %w", err)
	}
	return count, nil
}
