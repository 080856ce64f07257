package postgres

import (
	"context"
	"errors"
	"fmt"

	"campuslink/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersStore reads from the platform-owned users table. This core never
// creates or mutates users.
type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) GetUserSummary(ctx context.Context, userID string) (domain.UserSummary, error) {
	const q = `SELECT id, name, role FROM users WHERE id = $1`

	var (
		idUUID pgtype.UUID
		name   string
		role   string
	)
	err := s.pool.QueryRow(ctx, q, userID).Scan(&idUUID, &name, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserSummary{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserSummary{}, fmt.Errorf("get user: %w", err)
	}

	return domain.UserSummary{
		ID:   uuidOrEmpty(idUUID),
		Name: name,
		Role: domain.Role(role),
	}, nil
}
