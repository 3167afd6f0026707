package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/switchyard/database/internal"
)

// TokenStore implements auth.TokenStore. Tokens are stored hashed.
type TokenStore struct {
	db    *sql.DB
	table string
}

func (s *TokenStore) Add(ctx context.Context, token string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (token_hash, created_at) VALUES (?, ?)
		ON CONFLICT (token_hash) DO NOTHING`, quoteIdentifier(s.table))

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, internal.HashToken(token), now); err != nil {
		return fmt.Errorf("add token: %w", err)
	}
	return nil
}

func (s *TokenStore) Contains(ctx context.Context, token string) (bool, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT 1 FROM %s WHERE token_hash = ?`, quoteIdentifier(s.table))

	var one int
	err := s.db.QueryRowContext(ctx, query, internal.HashToken(token)).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("contains token: %w", err)
	}
	return true, nil
}

func (s *TokenStore) Remove(ctx context.Context, token string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE token_hash = ?`, quoteIdentifier(s.table))

	if _, err := s.db.ExecContext(ctx, query, internal.HashToken(token)); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
