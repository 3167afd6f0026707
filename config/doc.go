// Package config provides configuration loading and validation for switchyard.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SWITCHYARD_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SWITCHYARD_ prefix:
//   - server.port → SWITCHYARD_SERVER_PORT
//   - database.type → SWITCHYARD_DATABASE_TYPE
//   - auth.access_ttl → SWITCHYARD_AUTH_ACCESS_TTL
//
// Durations accept Go duration strings such as "15s" or "24h".
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: development or production
//   - Server: port, dispatch and http timeouts, max_upload_size, reject_duplicate_routes
//   - Database: type, DSN, table names and auto_migrate
//   - Storage: upload directory
//   - Auth: signing key id, issuer, token lifetimes and keys
//   - CORS: cross-origin resource sharing settings
//   - Docs: generated API document settings
//   - Log: logging level
package config
