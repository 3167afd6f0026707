package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/switchyard/auth"
	"github.com/sagarc03/switchyard/catalog"
	"github.com/sagarc03/switchyard/database/internal"
)

// Tables is an alias for internal.Tables for package compatibility.
type Tables = internal.Tables

// Database provides PostgreSQL database operations.
type Database struct {
	pool   *pgxpool.Pool
	tables Tables
}

// Connect establishes a connection pool to PostgreSQL.
func Connect(ctx context.Context, dsn string, tables Tables) (*Database, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Database{
		pool:   pool,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *Database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.pool, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *Database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// Catalog returns the user and book repo.
func (d *Database) Catalog() catalog.Repo {
	return &Repo{pool: d.pool, users: d.tables.Users, books: d.tables.Books}
}

// Tokens returns the refresh token store.
func (d *Database) Tokens() auth.TokenStore {
	return &TokenStore{pool: d.pool, table: d.tables.RefreshTokens}
}

// Close closes the database connection pool.
func (d *Database) Close() error {
	d.pool.Close()
	return nil
}
