package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/switchyard/auth"
	"github.com/sagarc03/switchyard/catalog"
	"github.com/sagarc03/switchyard/database/internal"
	"github.com/sagarc03/switchyard/database/postgres"
	"github.com/sagarc03/switchyard/database/sqlite"
)

// Tables names the tables the application uses.
type Tables = internal.Tables

// DefaultTables returns the default table names.
func DefaultTables() Tables {
	return internal.DefaultTables
}

// Config holds the configuration for connecting to a database backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" yaml:"dsn" validate:"required"`
	// Tables holds the table names
	Tables Tables `mapstructure:"tables" yaml:"tables"`
	// AutoMigrate creates missing tables on startup
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// Database is an open backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Catalog() catalog.Repo
	Tokens() auth.TokenStore
	Close() error
}

// Connect opens the configured backend. It does not migrate or validate.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, pings, migrates when cfg.AutoMigrate is set and validates
// the schema. The database is closed on any failure.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
		}
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
	}

	return db, nil
}
