package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campuslink/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConnectionsStore struct {
	pool *pgxpool.Pool
}

func NewConnectionsStore(pool *pgxpool.Pool) *ConnectionsStore {
	return &ConnectionsStore{pool: pool}
}

// RequestConnection creates or reactivates the edge for the pair
// (senderID, receiverID). The pair row is locked for the whole decision so
// a concurrent request cannot observe a stale status, and the symmetric
// unique index closes the insert race when no row exists yet.
func (s *ConnectionsStore) RequestConnection(ctx context.Context, senderID, receiverID string) (domain.Connection, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Connection{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const lookup = `
		SELECT id, status, created_at
		FROM connections
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		FOR UPDATE
	`

	var (
		idUUID    pgtype.UUID
		status    string
		createdAt time.Time
	)
	err = tx.QueryRow(ctx, lookup, senderID, receiverID).Scan(&idUUID, &status, &createdAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		const insert = `
			INSERT INTO connections (sender_id, receiver_id, status)
			VALUES ($1, $2, 'pending')
			RETURNING id, created_at
		`
		if err := tx.QueryRow(ctx, insert, senderID, receiverID).Scan(&idUUID, &createdAt); err != nil {
			var pgerr *pgconn.PgError
			if errors.As(err, &pgerr) {
				if pgerr.Code == "23505" && pgerr.ConstraintName == "connections_pair_uq" {
					return domain.Connection{}, domain.ErrRequestAlreadyPending
				}
				if pgerr.Code == "23503" {
					return domain.Connection{}, domain.ErrNotFound
				}
			}
			return domain.Connection{}, fmt.Errorf("insert connection: %w", err)
		}
	case err != nil:
		return domain.Connection{}, fmt.Errorf("lookup connection pair: %w", err)
	default:
		switch domain.ConnectionStatus(status) {
		case domain.ConnectionAccepted:
			return domain.Connection{}, domain.ErrAlreadyConnected
		case domain.ConnectionPending:
			return domain.Connection{}, domain.ErrRequestAlreadyPending
		case domain.ConnectionRejected:
			// Reactivation rewrites the edge in place; the prior
			// rejection is not retained.
			const reopen = `
				UPDATE connections
				SET sender_id = $2, receiver_id = $3, status = 'pending', created_at = now()
				WHERE id = $1
				RETURNING created_at
			`
			if err := tx.QueryRow(ctx, reopen, uuidOrEmpty(idUUID), senderID, receiverID).Scan(&createdAt); err != nil {
				return domain.Connection{}, fmt.Errorf("reopen connection: %w", err)
			}
		default:
			return domain.Connection{}, fmt.Errorf("connection %s: unexpected status %q", uuidOrEmpty(idUUID), status)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Connection{}, fmt.Errorf("commit connection request: %w", err)
	}

	return domain.Connection{
		ID:         uuidOrEmpty(idUUID),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.ConnectionPending,
		CreatedAt:  createdAt,
	}, nil
}

func (s *ConnectionsStore) GetConnection(ctx context.Context, connectionID string) (domain.Connection, error) {
	const q = `
		SELECT id, sender_id, receiver_id, status, created_at
		FROM connections
		WHERE id = $1
	`
	return scanConnection(s.pool.QueryRow(ctx, q, connectionID))
}

// Respond resolves a pending request. Only the receiver may respond, and
// only while the connection is pending; the two failure modes stay
// distinct so callers can decide how much to reveal.
func (s *ConnectionsStore) Respond(ctx context.Context, connectionID, responderID string, decision domain.ConnectionStatus) (domain.Connection, error) {
	if decision != domain.ConnectionAccepted && decision != domain.ConnectionRejected {
		return domain.Connection{}, domain.NewValidationError(map[string]string{"response": "must be accepted or rejected"})
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Connection{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const lookup = `
		SELECT id, sender_id, receiver_id, status, created_at
		FROM connections
		WHERE id = $1
		FOR UPDATE
	`
	conn, err := scanConnection(tx.QueryRow(ctx, lookup, connectionID))
	if err != nil {
		return domain.Connection{}, err
	}
	if conn.ReceiverID != responderID {
		return domain.Connection{}, domain.ErrNotAuthorized
	}
	if conn.Status != domain.ConnectionPending {
		return domain.Connection{}, domain.ErrInvalidState
	}

	const update = `UPDATE connections SET status = $2 WHERE id = $1`
	if _, err := tx.Exec(ctx, update, connectionID, string(decision)); err != nil {
		return domain.Connection{}, fmt.Errorf("respond to connection: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Connection{}, fmt.Errorf("commit connection response: %w", err)
	}

	conn.Status = decision
	return conn, nil
}

// Remove deletes an accepted connection (unfriend). Messages go with it,
// and the pair is free for a fresh request afterwards.
func (s *ConnectionsStore) Remove(ctx context.Context, connectionID, requesterID string) error {
	const q = `
		DELETE FROM connections
		WHERE id = $1
		  AND status = 'accepted'
		  AND (sender_id = $2 OR receiver_id = $2)
	`
	ct, err := s.pool.Exec(ctx, q, connectionID, requesterID)
	if err != nil {
		return fmt.Errorf("remove connection: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListConversations returns every pending or accepted connection the user
// participates in, joined with the other party, the latest message and the
// user's unread count. Connections with messages sort by latest activity;
// the rest follow, newest edge first.
func (s *ConnectionsStore) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	const q = `
		SELECT c.id, c.status,
		       u.id, u.name, u.role,
		       lm.body, lm.attachment_url, lm.created_at,
		       COALESCE(un.cnt, 0)
		FROM connections c
		JOIN users u ON u.id = CASE
			WHEN c.sender_id = $1 THEN c.receiver_id
			ELSE c.sender_id
		END
		LEFT JOIN LATERAL (
			SELECT m.body, m.attachment_url, m.created_at
			FROM messages m
			WHERE m.connection_id = c.id
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		) lm ON true
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS cnt
			FROM messages m
			WHERE m.connection_id = c.id
			  AND m.sender_id <> $1
			  AND m.read_at IS NULL
		) un ON true
		WHERE (c.sender_id = $1 OR c.receiver_id = $1)
		  AND c.status IN ('pending', 'accepted')
		ORDER BY lm.created_at DESC NULLS LAST, c.created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []domain.ConversationSummary
	for rows.Next() {
		var (
			connUUID      pgtype.UUID
			status        string
			otherUUID     pgtype.UUID
			otherName     string
			otherRole     string
			lastBody      pgtype.Text
			lastAttach    pgtype.Text
			lastCreatedAt pgtype.Timestamptz
			unread        int
		)
		if err := rows.Scan(&connUUID, &status, &otherUUID, &otherName, &otherRole,
			&lastBody, &lastAttach, &lastCreatedAt, &unread); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}

		body := textOrEmpty(lastBody)
		if body == "" && lastAttach.Valid {
			body = textOrEmpty(lastAttach)
		}
		out = append(out, domain.ConversationSummary{
			ConnectionID:  uuidOrEmpty(connUUID),
			Status:        domain.ConnectionStatus(status),
			User:          domain.UserSummary{ID: uuidOrEmpty(otherUUID), Name: otherName, Role: domain.Role(otherRole)},
			LastMessage:   body,
			LastMessageAt: timestamptzPtr(lastCreatedAt),
			UnreadCount:   unread,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}

func scanConnection(row pgx.Row) (domain.Connection, error) {
	var (
		idUUID    pgtype.UUID
		srcUUID   pgtype.UUID
		dstUUID   pgtype.UUID
		status    string
		createdAt time.Time
	)
	err := row.Scan(&idUUID, &srcUUID, &dstUUID, &status, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Connection{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Connection{}, fmt.Errorf("scan connection: %w", err)
	}
	return domain.Connection{
		ID:         uuidOrEmpty(idUUID),
		SenderID:   uuidOrEmpty(srcUUID),
		ReceiverID: uuidOrEmpty(dstUUID),
		Status:     domain.ConnectionStatus(status),
		CreatedAt:  createdAt,
	}, nil
}
