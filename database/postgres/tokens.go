package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/switchyard/database/internal"
)

// TokenStore implements auth.TokenStore. Tokens are stored hashed.
type TokenStore struct {
	pool  *pgxpool.Pool
	table string
}

func (s *TokenStore) Add(ctx context.Context, token string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (token_hash) VALUES ($1)
		ON CONFLICT (token_hash) DO NOTHING
	`, pgx.Identifier{s.table}.Sanitize())

	if _, err := s.pool.Exec(ctx, query, internal.HashToken(token)); err != nil {
		return fmt.Errorf("add token: %w", err)
	}
	return nil
}

func (s *TokenStore) Contains(ctx context.Context, token string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE token_hash = $1)
	`, pgx.Identifier{s.table}.Sanitize())

	var exists bool
	if err := s.pool.QueryRow(ctx, query, internal.HashToken(token)).Scan(&exists); err != nil {
		return false, fmt.Errorf("contains token: %w", err)
	}
	return exists, nil
}

func (s *TokenStore) Remove(ctx context.Context, token string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE token_hash = $1`, pgx.Identifier{s.table}.Sanitize())

	if _, err := s.pool.Exec(ctx, query, internal.HashToken(token)); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
