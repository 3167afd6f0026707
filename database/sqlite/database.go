package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/switchyard/auth"
	"github.com/sagarc03/switchyard/catalog"
	"github.com/sagarc03/switchyard/database/internal"

	_ "modernc.org/sqlite" // SQLite driver
)

// Tables is an alias for internal.Tables for package compatibility.
type Tables = internal.Tables

// Database provides SQLite database operations.
type Database struct {
	db     *sql.DB
	tables Tables
}

// Connect opens the SQLite database at dsn. The pool is limited to one
// connection so ":memory:" databases are shared by every query.
func Connect(ctx context.Context, dsn string, tables Tables) (*Database, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &Database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *Database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *Database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// Catalog returns the user and book repo.
func (d *Database) Catalog() catalog.Repo {
	return &Repo{db: d.db, users: d.tables.Users, books: d.tables.Books}
}

// Tokens returns the refresh token store.
func (d *Database) Tokens() auth.TokenStore {
	return &TokenStore{db: d.db, table: d.tables.RefreshTokens}
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}
