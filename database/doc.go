// Package database provides a unified interface for connecting to the
// application's storage backends.
//
// The package supports PostgreSQL and SQLite. Each backend stores users
// and books for the catalog and the hashed refresh tokens the auth
// handlers issue.
//
// # Supported Backends
//
//   - PostgreSQL: Production-ready backend using pgx connection pool
//   - SQLite: Lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "switchyard.db",
//	    Tables:      database.DefaultTables(),
//	    AutoMigrate: true,
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	repo := db.Catalog()
//	tokens := db.Tokens()
//
// Connect only opens the backend. Open additionally pings it, runs
// migrations when AutoMigrate is set and validates the schema.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
